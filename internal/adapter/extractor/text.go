package extractor

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RawText decodes the bytes as text. A UTF-16 or UTF-8 byte order mark is
// honoured; otherwise the bytes are read as UTF-8 and invalid sequences are
// dropped. Blank input is rejected with ErrNoText unless allowEmpty is set.
type RawText struct {
	label      string
	allowEmpty bool
}

// NewRawText returns a RawText strategy that embeds under label.
func NewRawText(label string) RawText {
	return RawText{label: label}
}

func (RawText) Name() string    { return "raw" }
func (t RawText) Label() string { return t.label }

func (t RawText) Extract(data []byte) (string, error) {
	text := DecodeText(data)
	if !t.allowEmpty && strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// DecodeText never fails; undecodable input degrades to fewer characters.
func DecodeText(data []byte) string {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		decoded = data
	}
	return strings.ToValidUTF8(string(decoded), "")
}
