package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID in its canonical textual form.
func GenerateUUID() string {
	return uuid.New().String()
}

// StripQuotes removes one pair of matching surrounding quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
