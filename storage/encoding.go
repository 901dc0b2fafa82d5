package storage

import (
	"encoding/base64"
	"unicode/utf8"
)

// EncodeMessage converts caller-facing message text into the queue's wire
// representation: standard base64 of the UTF-8 bytes.
func EncodeMessage(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeMessage reverses EncodeMessage. The second return value reports
// whether decoding succeeded; on invalid base64 or invalid UTF-8 the wire
// string is returned unchanged with ok=false. Decode failure is an ordinary
// result, not an error, so readers can fall back to displaying raw text.
func DecodeMessage(wire string) (text string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return wire, false
	}
	if !utf8.Valid(raw) {
		return wire, false
	}
	return string(raw), true
}
