package compare

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPolicy is returned for a policy other than Strict, Permissive and Prompt
var ErrUnsupportedPolicy = errors.New("unsupported comparison policy")

// Policy decides what Compare returns for datasets that are not compatible
type Policy string

const (
	// Strict returns the report only
	Strict Policy = "strict"
	// Permissive returns the aligned view with conflicting units left out of the labels
	Permissive Policy = "permissive"
	// Prompt returns a pending report, leaving the decision to the caller
	Prompt Policy = "prompt"
)

// ParsePolicy parses a policy name, the empty name is Strict
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", Strict:
		return Strict, nil
	case Permissive:
		return Permissive, nil
	case Prompt:
		return Prompt, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPolicy, name)
}

func (p Policy) valid() bool {
	switch p {
	case Strict, Permissive, Prompt:
		return true
	}
	return false
}
