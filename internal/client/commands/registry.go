package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"chess/internal/client/display"
	"chess/internal/client/session"
)

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Registry, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	out      io.Writer
	commands map[string]*Command
	quit     bool
}

func NewRegistry(s *session.Session, out io.Writer) *Registry {
	r := &Registry{
		session:  s,
		out:      out,
		commands: make(map[string]*Command),
	}

	r.registerConversationCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Done reports whether the exit command ran
func (r *Registry) Done() bool {
	return r.quit
}

// Execute runs a command line. A line that does not start with a command is
// spoken to the current session.
func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	cmd, exists := r.commands[parts[0]]
	if !exists {
		if r.session.SessionID == "" {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
			fmt.Fprintf(r.out, "Type 'help' for available commands, or 'new' to start a game\n")
			return
		}
		cmd = r.commands["say"]
		parts = append([]string{"say"}, parts...)
	}

	if err := cmd.Handler(r, parts[1:]); err != nil {
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func helpHandler(r *Registry, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(r.out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	seen := map[string]bool{}
	var names []string
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := r.commands[name]
		shortPart := "    "
		if cmd.ShortName != "" {
			shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
	}

	fmt.Fprintf(r.out, "\nAnything else you type is said to the current game, e.g. 'knight to f3'\n")
	fmt.Fprintf(r.out, "Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(r *Registry, args []string) error {
	fmt.Fprintf(r.out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
	r.quit = true
	return nil
}
