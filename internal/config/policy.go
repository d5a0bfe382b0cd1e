package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPolicyViolation is matched by every PolicyViolation.
var ErrPolicyViolation = errors.New("policy violation")

// PolicyViolation is a normal negative outcome: conflicting flags, or a
// declined overwrite confirmation. It short-circuits an item without being
// reported as a failure.
type PolicyViolation struct {
	Reason string
}

func (e *PolicyViolation) Error() string {
	return "policy violation: " + e.Reason
}

// Is reports whether target is ErrPolicyViolation.
func (e *PolicyViolation) Is(target error) bool {
	return target == ErrPolicyViolation
}

// OverwriteMode decides what happens when the final output already exists.
type OverwriteMode int

const (
	// OverwriteSkip never re-downloads an existing output.
	OverwriteSkip OverwriteMode = iota

	// OverwriteAlways re-downloads and replaces an existing output.
	OverwriteAlways

	// OverwriteAsk asks for confirmation per existing output.
	OverwriteAsk
)

func (m OverwriteMode) String() string {
	switch m {
	case OverwriteSkip:
		return "skip"
	case OverwriteAlways:
		return "overwrite"
	case OverwriteAsk:
		return "ask"
	default:
		return fmt.Sprintf("OverwriteMode(%d)", int(m))
	}
}

// ParseOverwriteMode parses "skip", "overwrite" or "ask".
func ParseOverwriteMode(s string) (OverwriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return OverwriteSkip, nil
	case "overwrite", "always":
		return OverwriteAlways, nil
	case "ask", "interactive":
		return OverwriteAsk, nil
	default:
		return 0, fmt.Errorf("unknown overwrite mode %q (want skip, overwrite or ask)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m OverwriteMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It is used by both the
// JSON settings file and envconfig.
func (m *OverwriteMode) UnmarshalText(text []byte) error {
	mode, err := ParseOverwriteMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ResolveOverwriteMode applies the --overwrite and --interactive flags on top
// of the configured mode. Both flags at once is a PolicyViolation.
func ResolveOverwriteMode(configured OverwriteMode, overwrite, interactive bool) (OverwriteMode, error) {
	switch {
	case overwrite && interactive:
		return configured, &PolicyViolation{Reason: "--overwrite and --interactive are mutually exclusive"}
	case overwrite:
		return OverwriteAlways, nil
	case interactive:
		return OverwriteAsk, nil
	default:
		return configured, nil
	}
}

// ParseContinue parses the --continue flag value. Only "true" and "false"
// are accepted.
func ParseContinue(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --continue value %q (want true or false)", s)
	}
}

// Policy is the process-wide overwrite/resume configuration, fixed before
// any session runs.
type Policy struct {
	Overwrite OverwriteMode
	Resume    bool
}

// DefaultResume is the resume flag implied by an overwrite mode when none is
// set explicitly: overwriting starts clean, everything else resumes.
func DefaultResume(mode OverwriteMode) bool {
	return mode != OverwriteAlways
}
