// Package sidecar is the HTTP plumbing shared by the locally hosted model
// sidecars: a health probe and a multipart audio upload that decodes a JSON
// reply.
package sidecar
