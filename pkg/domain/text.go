package domain

import (
	"encoding/json"
	"slices"
)

// Text is an optional string.
// The zero value is absent, which is distinct from Some("").
type Text struct {
	value string
	valid bool
}

// None returns an absent Text.
func None() Text {
	return Text{}
}

// Some wraps s as a present Text, even when s is empty.
func Some(s string) Text {
	return Text{value: s, valid: true}
}

// TextOf converts a nullable string pointer.
func TextOf(s *string) Text {
	if s == nil {
		return None()
	}
	return Some(*s)
}

// Value returns the string and whether it is present.
func (t Text) Value() (string, bool) {
	return t.value, t.valid
}

// IsNone reports whether the text is absent.
func (t Text) IsNone() bool {
	return !t.valid
}

// IsEmpty reports whether the text is absent or the empty string.
func (t Text) IsEmpty() bool {
	return t.value == ""
}

// Equal compares presence and content. Two absent texts are equal.
func (t Text) Equal(other Text) bool {
	return t.valid == other.valid && t.value == other.value
}

// Runes returns the characters of the text (nil when absent).
func (t Text) Runes() []rune {
	if !t.valid {
		return nil
	}
	return []rune(t.value)
}

// RuneLen returns the character length, 0 when absent.
func (t Text) RuneLen() int {
	return len(t.Runes())
}

// HasPrefix reports whether t is present and starts with the characters of prefix.
// An absent prefix is never matched.
func (t Text) HasPrefix(prefix Text) bool {
	if !t.valid || !prefix.valid {
		return false
	}
	r, p := t.Runes(), prefix.Runes()
	return len(p) <= len(r) && slices.Equal(r[:len(p)], p)
}

// HasSuffix reports whether t is present and ends with the characters of suffix.
func (t Text) HasSuffix(suffix Text) bool {
	if !t.valid || !suffix.valid {
		return false
	}
	r, s := t.Runes(), suffix.Runes()
	return len(s) <= len(r) && slices.Equal(r[len(r)-len(s):], s)
}

// String returns the content, or "" when absent. Use Value to tell them apart.
func (t Text) String() string {
	return t.value
}

// MarshalJSON encodes absent text as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes null as absent text.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TextOf(s)
	return nil
}
