//go:build cgo

package vad

import webrtcvad "github.com/maxhawkins/go-webrtcvad"

type webrtcClassifier struct {
	vad *webrtcvad.VAD
}

func newWebRTC(mode int) (frameClassifier, error) {
	vad, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	// WebRTC VAD modes: 0 (quality) .. 3 (aggressive).
	if err := vad.SetMode(mode); err != nil {
		return nil, err
	}
	return &webrtcClassifier{vad: vad}, nil
}

func (w *webrtcClassifier) Process(sampleRate int, frame []byte) (bool, error) {
	return w.vad.Process(sampleRate, frame)
}
