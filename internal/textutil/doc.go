// Package textutil provides text clean-up for dataset artefacts.
//
// The primary use cases are:
//   - Sanitizing project names into directory tokens
//   - Deriving clip file stems from the input file name
//   - Normalizing transcriptions so each fits on one manifest line
package textutil
