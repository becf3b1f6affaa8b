package command

import (
	"fmt"
	"strings"
	"time"
)

// Command defines one REPL verb.
type Command struct {
	Name    string
	Aliases []string
	Args    string
	Summary string
	MinArgs int
	MaxArgs int // -1 means unbounded
}

// Usage renders "name args".
func (c Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Invocation is a parsed input line.
type Invocation struct {
	Command Command
	Args    []string
}

// Arg returns the i-th argument or "".
func (i Invocation) Arg(n int) string {
	if n < 0 || n >= len(i.Args) {
		return ""
	}
	return i.Args[n]
}

// Rest joins the arguments from n onwards with single spaces.
func (i Invocation) Rest(n int) string {
	if n >= len(i.Args) {
		return ""
	}
	return strings.Join(i.Args[n:], " ")
}

func checkArity(cmd Command, args []string) error {
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		return fmt.Errorf("usage: %s", cmd.Usage())
	}
	return nil
}

// ParseDuration accepts Go durations and bare integers as milliseconds.
func ParseDuration(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Trim(raw, "0123456789") == "" {
		raw += "ms"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
