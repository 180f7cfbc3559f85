package main

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind uint8

const (
	ConfigurationError ErrorKind = iota
	StructuralError
	ViolationError
	ScopeEmptyError
	CycleError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration"
	case StructuralError:
		return "structural"
	case ViolationError:
		return "violation"
	case ScopeEmptyError:
		return "scope-empty"
	case CycleError:
		return "cycle"
	}
	return "unknown"
}

var (
	ErrConfiguration = errors.New("invalid rule configuration")
	ErrStructural    = errors.New("dependency graph validation failed")
	ErrViolation     = errors.New("rule violated")
	ErrScopeEmpty    = errors.New("no files found")
	ErrCycle         = errors.New("cycle found")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case ConfigurationError:
		return ErrConfiguration
	case StructuralError:
		return ErrStructural
	case ViolationError:
		return ErrViolation
	case ScopeEmptyError:
		return ErrScopeEmpty
	case CycleError:
		return ErrCycle
	}
	return nil
}

// CheckError is the structured failure of a rule check. Messages hold one
// line per offending file (or per configuration problem).
type CheckError struct {
	Kind         ErrorKind
	Construction string
	Messages     []string
}

func (e *CheckError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind.sentinel(), e.Construction)
	for _, message := range e.Messages {
		b.WriteString("\n - ")
		b.WriteString(message)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrViolation) and friends work.
func (e *CheckError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Notification accumulates per-file messages for one evaluation. Each
// evaluator gets its own value.
type Notification struct {
	messages []string
}

func (n *Notification) Add(format string, args ...any) {
	n.messages = append(n.messages, fmt.Sprintf(format, args...))
}

func (n *Notification) HasErrors() bool {
	return len(n.messages) > 0
}

func (n *Notification) Messages() []string {
	return n.messages
}

// Err wraps the collected messages into a CheckError, nil when empty.
func (n *Notification) Err(kind ErrorKind, construction string) error {
	if !n.HasErrors() {
		return nil
	}
	return &CheckError{Kind: kind, Construction: construction, Messages: n.messages}
}
