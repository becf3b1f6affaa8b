package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/shlex"
)

var commands = []Command{
	{Name: "problems", Aliases: []string{"ls"}, Summary: "list the problem catalog", MaxArgs: 0},
	{Name: "use", Args: "<problem_id>", Summary: "select a problem and show its statement", MinArgs: 1, MaxArgs: 1},
	{Name: "lang", Args: "[python|cpp]", Summary: "select the submission language, or list them", MaxArgs: 1},
	{Name: "load", Args: "<file>", Summary: "replace the code buffer with a file", MinArgs: 1, MaxArgs: 1},
	{Name: "edit", Summary: "type new code, finish with a line containing only '.'", MaxArgs: 0},
	{Name: "show", Summary: "print the code buffer", MaxArgs: 0},
	{Name: "submit", Aliases: []string{"s"}, Summary: "submit the code buffer for grading", MaxArgs: 0},
	{Name: "wait", Summary: "block until the latest submission finishes", MaxArgs: 0},
	{Name: "status", Summary: "show selection, timer and last result", MaxArgs: 0},
	{Name: "time", Summary: "print the solve timer", MaxArgs: 0},
	{Name: "watch", Summary: "refresh the solve timer until Enter or a verdict", MaxArgs: 0},
	{Name: "reset", Summary: "restore the template and re-arm the timer", MaxArgs: 0},
	{Name: "health", Summary: "check the judge gateway", MaxArgs: 0},
	{Name: "set", Args: "base <url> | timeout <duration>", Summary: "change the gateway endpoint", MinArgs: 2, MaxArgs: 2},
	{Name: "help", Aliases: []string{"?"}, Summary: "show this help", MaxArgs: 0},
	{Name: "exit", Aliases: []string{"quit"}, Summary: "leave the session", MaxArgs: 0},
}

// Registry returns all REPL commands keyed by name and alias.
func Registry() map[string]Command {
	result := make(map[string]Command, len(commands)*2)
	for _, cmd := range commands {
		result[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			result[alias] = cmd
		}
	}
	return result
}

// List returns the commands in help order.
func List() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// Parse tokenizes a line with shell quoting rules and resolves its command.
func Parse(registry map[string]Command, line string) (Invocation, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Invocation{}, fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return Invocation{}, fmt.Errorf("empty command")
	}
	cmd, ok := registry[strings.ToLower(tokens[0])]
	if !ok {
		return Invocation{}, fmt.Errorf("unknown command: %s (try help)", tokens[0])
	}
	args := tokens[1:]
	if err := checkArity(cmd, args); err != nil {
		return Invocation{}, err
	}
	return Invocation{Command: cmd, Args: args}, nil
}

// Complete returns command names starting with prefix, sorted.
func Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var names []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd.Name, prefix) {
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)
	return names
}
