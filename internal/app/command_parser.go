package app

import (
	"fmt"
	"strings"
)

// CommandResult represents the outcome of a command execution
type CommandResult struct {
	Success bool
	Message string
	Error   error
}

// CommandHandler runs a command with its arguments
type CommandHandler func(args []string) CommandResult

// CommandDef defines a command with metadata
type CommandDef struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	MinArgs     int
	MaxArgs     int // -1 for unlimited
	Args        ArgType
	Handler     CommandHandler
}

// CheckArgs validates the number of arguments
func (c CommandDef) CheckArgs(args []string) error {
	if len(args) < c.MinArgs || (c.MaxArgs >= 0 && len(args) > c.MaxArgs) {
		return fmt.Errorf("usage: %s", c.Usage)
	}
	return nil
}

// ParseCommand splits input into a lower-cased command name and its
// arguments. Double quotes group words: ct "Home Page".
func ParseCommand(input string) (name string, args []string, err error) {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range strings.TrimSpace(input) {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case r == ' ' && !quoted:
			if started {
				parts = append(parts, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return "", nil, fmt.Errorf("unterminated quote in %q", input)
	}
	if started {
		parts = append(parts, current.String())
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.ToLower(parts[0]), parts[1:], nil
}
