// Package ecmd implements a line-oriented text command interface: one
// command per line, one reply per command.
package ecmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sgcd/helpers/syncutil"
)

var (
	// ErrUnknownCommand is returned for a name nothing is registered under
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned when the arguments do not match the command
	ErrUsage = errors.New("usage")
)

// Handler runs a command and returns its reply
type Handler func(args []string) (string, error)

// Command is a registered text command
type Command struct {
	Name    string
	Usage   string // argument synopsis, e.g. "<minutes>"
	Help    string
	Handler Handler
}

// Registry holds the registered commands
type Registry struct {
	mu       syncutil.RWMutex
	commands map[string]*Command
}

// NewRegistry creates an empty registry with the help command
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}
	r.Register("help", "", "list commands", func([]string) (string, error) {
		return r.HelpText(), nil
	})
	return r
}

// Register adds a command. Registering a name twice replaces the handler.
func (r *Registry) Register(name, usage, help string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = &Command{
		Name:    name,
		Usage:   usage,
		Help:    help,
		Handler: handler,
	}
}

// Lookup retrieves a command by name
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// HelpText lists every command with its synopsis
func (r *Registry) HelpText() string {
	var b strings.Builder
	for i, name := range r.Names() {
		cmd, _ := r.Lookup(name)
		if i > 0 {
			b.WriteByte('\n')
		}
		synopsis := cmd.Name
		if cmd.Usage != "" {
			synopsis += " " + cmd.Usage
		}
		fmt.Fprintf(&b, "%-40s %s", synopsis, cmd.Help)
	}
	return b.String()
}

// Dispatch parses line and runs the named command. A usage error carries
// the command's synopsis.
func (r *Registry) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	cmd, ok := r.Lookup(fields[0])
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}

	reply, err := cmd.Handler(fields[1:])
	if errors.Is(err, ErrUsage) {
		return "", fmt.Errorf("%w: %s %s", ErrUsage, cmd.Name, cmd.Usage)
	}
	return reply, err
}
