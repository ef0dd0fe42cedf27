//go:build !cgo

package vad

import "errors"

func newWebRTC(int) (frameClassifier, error) {
	return nil, errors.New("webrtcvad unavailable (cgo disabled)")
}
