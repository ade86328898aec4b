// Package main implements an interactive text client for the chesstalk server,
// standing in for the voice front end during development.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chess/internal/client/api"
	"chess/internal/client/commands"
	"chess/internal/client/display"
	"chess/internal/client/session"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	flag.Parse()

	s := &session.Session{
		APIBaseURL: *apiURL,
		Client:     api.New(*apiURL),
	}
	registry := commands.NewRegistry(s, os.Stdout)

	// Piped input runs as a script without line editing
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runScript(s, registry, os.Stdin)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chesstalk"),
		HistoryFile:     ".chesstalk_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChesstalk Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'new' to start a game, 'help' for commands\n\n")

	for !registry.Done() {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		execute(s, registry, line)
	}
}

func runScript(s *session.Session, registry *commands.Registry, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && !registry.Done() {
		execute(s, registry, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}
}

func execute(s *session.Session, registry *commands.Registry, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	if line == "quit" {
		line = "exit"
	}

	// Check for verbose flag
	if strings.HasSuffix(line, " -v") {
		s.Verbose = true
		line = strings.TrimSuffix(line, " -v")
	} else {
		s.Verbose = false
	}

	registry.Execute(line)
}

func buildPrompt(s *session.Session) string {
	promptStr := "chesstalk"
	if s.SessionID == "" {
		return display.Prompt(promptStr)
	}

	promptStr += display.Yellow + " [" + display.White + s.ShortID() + display.Yellow + "]"

	if st := s.State; st != nil {
		if st.UserColor != "" {
			promptStr += " " + display.ColorForTurn(st.UserColor)
		}
		promptStr += display.Yellow + " - " + st.Mode
	}

	return display.Prompt(promptStr)
}
