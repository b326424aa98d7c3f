package domain

import (
	"fmt"
	"strings"
	"time"
)

// UpdatePolicy decides how the proxy text moves when the base text changes.
type UpdatePolicy int

const (
	// ResetThenAdd clears a stale proxy and adds tokens front to back.
	ResetThenAdd UpdatePolicy = iota
	// ResetThenAddReverse clears a stale proxy and adds tokens back to front.
	ResetThenAddReverse
	// DeleteThenAdd removes tokens until the proxy is a prefix of the base
	// again, then fills out the rest token by token.
	DeleteThenAdd
)

var policyNames = map[UpdatePolicy]string{
	ResetThenAdd:        "reset-then-add",
	ResetThenAddReverse: "reset-then-add-reverse",
	DeleteThenAdd:       "delete-then-add",
}

func (p UpdatePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("UpdatePolicy(%d)", int(p))
}

// Valid reports whether p is one of the known policies.
func (p UpdatePolicy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// MarshalText encodes the policy by name.
func (p UpdatePolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &ConfigError{Field: "update_policy", Value: int(p), Reason: "unknown policy"}
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts any spelling ParseUpdatePolicy does.
func (p *UpdatePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseUpdatePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseUpdatePolicy accepts the kebab-case policy names, case-insensitive,
// with '_' or ' ' accepted in place of '-'.
func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for p, name := range policyNames {
		if name == norm || strings.ReplaceAll(name, "-", "") == norm {
			return p, nil
		}
	}
	return 0, &ConfigError{Field: "update_policy", Value: s, Reason: "unknown policy"}
}

// TokenRange is an inclusive range of token lengths, in characters.
type TokenRange struct {
	Min int
	Max int
}

// Span returns the number of distinct lengths in the range.
func (r TokenRange) Span() int {
	return r.Max - r.Min + 1
}

// Defaults used by DefaultTokenConfiguration.
const (
	DefaultTokenMin       = 1
	DefaultTokenMax       = 2
	DefaultTokenFrequency = 20
	DefaultUpdatePolicy   = ResetThenAdd
)

// TokenConfiguration holds the settings of a token-renderable component.
// It is immutable; build it with NewTokenConfiguration or DefaultTokenConfiguration.
type TokenConfiguration struct {
	tokenLength    TokenRange
	tokenFrequency int
	updatePolicy   UpdatePolicy
}

// DefaultTokenConfiguration returns length [1,2], 20 tokens per second, ResetThenAdd.
func DefaultTokenConfiguration() TokenConfiguration {
	return TokenConfiguration{
		tokenLength:    TokenRange{Min: DefaultTokenMin, Max: DefaultTokenMax},
		tokenFrequency: DefaultTokenFrequency,
		updatePolicy:   DefaultUpdatePolicy,
	}
}

// NewTokenConfiguration validates its inputs and returns a *ConfigError on failure.
func NewTokenConfiguration(length TokenRange, frequency int, policy UpdatePolicy) (TokenConfiguration, error) {
	cfg := TokenConfiguration{
		tokenLength:    length,
		tokenFrequency: frequency,
		updatePolicy:   policy,
	}
	if err := cfg.Validate(); err != nil {
		return TokenConfiguration{}, err
	}
	return cfg, nil
}

// Validate checks the range, frequency and policy.
func (c TokenConfiguration) Validate() error {
	switch {
	case c.tokenLength.Min < 1:
		return &ConfigError{Field: "token_length.min", Value: c.tokenLength.Min, Reason: "must be at least 1"}
	case c.tokenLength.Min > c.tokenLength.Max:
		return &ConfigError{Field: "token_length", Value: c.tokenLength, Reason: "min must not exceed max"}
	case c.tokenFrequency <= 0:
		return &ConfigError{Field: "token_frequency", Value: c.tokenFrequency, Reason: "must be positive"}
	case !c.updatePolicy.Valid():
		return &ConfigError{Field: "update_policy", Value: c.updatePolicy, Reason: "unknown policy"}
	}
	return nil
}

// IsZero reports whether c is the unset zero value.
func (c TokenConfiguration) IsZero() bool {
	return c == TokenConfiguration{}
}

// TokenLength returns the inclusive token length range.
func (c TokenConfiguration) TokenLength() TokenRange { return c.tokenLength }

// TokenFrequency returns the number of ticks per second.
func (c TokenConfiguration) TokenFrequency() int { return c.tokenFrequency }

// UpdatePolicy returns the policy applied on every tick.
func (c TokenConfiguration) UpdatePolicy() UpdatePolicy { return c.updatePolicy }

// Interval returns the time between two ticks.
func (c TokenConfiguration) Interval() time.Duration {
	if c.tokenFrequency <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.tokenFrequency)
}

func (c TokenConfiguration) String() string {
	return fmt.Sprintf("%d...%d @ %d/s %s", c.tokenLength.Min, c.tokenLength.Max, c.tokenFrequency, c.updatePolicy)
}
