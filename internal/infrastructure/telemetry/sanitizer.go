// Package telemetry scrubs user and tool content before it reaches logs or spans.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ContentLevel selects how much user content may be written to telemetry.
type ContentLevel string

const (
	// ContentLevelNone redacts all user content
	ContentLevelNone ContentLevel = "none"
	// ContentLevelHashed hashes PII with the service salt
	ContentLevelHashed ContentLevel = "hashed"
	// ContentLevelFull performs no sanitization
	ContentLevelFull ContentLevel = "full"
)

const maxPreviewRunes = 256

var (
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	creditCardPattern = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	phonePattern      = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ipv4Pattern       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Sanitizer applies the configured content level.
type Sanitizer struct {
	level ContentLevel
	salt  string
}

// NewSanitizer builds a sanitizer. Unknown levels behave like hashed.
func NewSanitizer(level, salt string) *Sanitizer {
	return &Sanitizer{level: ContentLevel(level), salt: salt}
}

// Content returns a loggable rendition of user or tool text, truncated to a
// short preview.
func (s *Sanitizer) Content(input string) string {
	if input == "" {
		return ""
	}
	switch s.level {
	case ContentLevelNone:
		return "[REDACTED]"
	case ContentLevelFull:
		return preview(input)
	default:
		return preview(s.hashPII(input))
	}
}

// ID hashes an identifier unless full content logging is enabled.
func (s *Sanitizer) ID(id string) string {
	if id == "" || s.level == ContentLevelFull {
		return id
	}
	return s.hash(id)
}

func (s *Sanitizer) hashPII(input string) string {
	result := emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	// Cards first so their digit groups are not read as phone numbers.
	result = creditCardPattern.ReplaceAllString(result, "[CC:REDACTED]")
	result = phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	result = ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	return result
}

func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= maxPreviewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxPreviewRunes]) + "..."
}
