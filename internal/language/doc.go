// Package language normalizes transcription language settings.
//
// Users may name a language by ISO 639-1 code, ISO 639-2 code, or English
// word ("en", "eng", "english"); the transcription backends expect the
// 2-letter form. Unknown 2-letter codes pass through untouched so newly
// supported Whisper languages keep working.
package language
