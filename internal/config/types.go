package config

import (
	"encoding/json"
	"strconv"
	"strings"
)

const redacted = "[REDACTED]"

// Secret holds a credential such as the OAuth2 client secret. Every printed or
// serialized form is masked; Value returns the real text.
type Secret string

func (s Secret) masked() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) String() string { return s.masked() }

func (s Secret) GoString() string { return "config.Secret(" + strconv.Quote(s.masked()) + ")" }

// Value returns the unmasked secret. Only pass it to the code that needs it.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether a value was configured.
func (s Secret) IsSet() bool { return s != "" }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.masked()) }

func (s Secret) MarshalText() ([]byte, error) { return []byte(s.masked()), nil }

// UnmarshalText trims surrounding whitespace, so a secret pasted into a file
// or env var with a trailing newline still matches the backend's.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(strings.TrimSpace(string(text)))
	return nil
}
