package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"chess/internal/server/core"
	"chess/internal/server/phrasebook"
	"chess/internal/server/storage"

	"golang.org/x/term"
)

// Run is the entry point for the admin commands: "db ..." and "phrase ..."
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("command required: db, phrase")
	}

	switch args[0] {
	case "db":
		return runDB(args[1:])
	case "phrase":
		return runPhrase(args[1:])
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runDB(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	default:
		return fmt.Errorf("unknown db subcommand: %s", args[0])
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	force := fs.Bool("force", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	// Ask only when a person is at the keyboard
	if !*force && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("Delete %s and every stored session? [y/N] ", *path)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	store, err := storage.NewStore(*path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	sessionID := fs.String("sessionId", "", "Session ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "List the moves of the selected session")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *moves && (*sessionID == "" || *sessionID == "*") {
		return fmt.Errorf("-moves requires a single -sessionId")
	}

	store, err := storage.NewStore(*path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if *moves {
		return printMoves(store, *sessionID)
	}

	sessions, err := store.QuerySessions(*sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Session ID\tColor\tDifficulty\tStart Time\tInitial FEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.SessionID,
			s.UserColor,
			s.Difficulty,
			s.StartTimeUTC.Format("2006-01-02 15:04:05"),
			s.InitialFEN,
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d session(s)\n", len(sessions))
	return nil
}

func printMoves(store *storage.Store, sessionID string) error {
	moves, err := store.QueryMoves(sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(moves) == 0 {
		fmt.Println("No moves found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Ply\tColor\tMove\tDescription\tFEN After")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.Ply, m.PlayerColor, m.MoveUCI, m.Description, m.FENAfterMove)
	}
	w.Flush()

	fmt.Printf("\nFound %d move(s)\n", len(moves))
	return nil
}

func runPhrase(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: add, forget, list")
	}

	switch args[0] {
	case "add":
		return runPhraseAdd(args[1:])
	case "forget":
		return runPhraseForget(args[1:])
	case "list":
		return runPhraseList(args[1:])
	default:
		return fmt.Errorf("unknown phrase subcommand: %s", args[0])
	}
}

func openBook(fs *flag.FlagSet, args []string) (*phrasebook.Store, error) {
	path := fs.String("path", "", "Phrasebook directory (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("phrasebook path required")
	}
	return phrasebook.Open(*path)
}

func runPhraseAdd(args []string) error {
	fs := flag.NewFlagSet("phrase add", flag.ContinueOnError)
	phrase := fs.String("phrase", "", "Phrase to learn (required)")
	level := fs.String("difficulty", "", "easy, medium or hard (required)")

	book, err := openBook(fs, args)
	if err != nil {
		return err
	}
	defer book.Close()

	d, ok := core.ParseDifficultyName(strings.ToLower(*level))
	if !ok {
		return fmt.Errorf("difficulty must be easy, medium or hard")
	}
	if err := book.Learn(*phrase, d); err != nil {
		return fmt.Errorf("failed to learn phrase: %w", err)
	}

	fmt.Printf("Learned %q as %s\n", *phrase, d)
	return nil
}

func runPhraseForget(args []string) error {
	fs := flag.NewFlagSet("phrase forget", flag.ContinueOnError)
	phrase := fs.String("phrase", "", "Phrase to forget (required)")

	book, err := openBook(fs, args)
	if err != nil {
		return err
	}
	defer book.Close()

	if err := book.Forget(*phrase); err != nil {
		return fmt.Errorf("failed to forget phrase: %w", err)
	}

	fmt.Printf("Forgot %q\n", *phrase)
	return nil
}

func runPhraseList(args []string) error {
	fs := flag.NewFlagSet("phrase list", flag.ContinueOnError)

	book, err := openBook(fs, args)
	if err != nil {
		return err
	}
	defer book.Close()

	phrases, err := book.List()
	if err != nil {
		return fmt.Errorf("failed to list phrases: %w", err)
	}
	if len(phrases) == 0 {
		fmt.Println("No phrases learned")
		return nil
	}

	keys := make([]string, 0, len(phrases))
	for k := range phrases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Phrase\tDifficulty")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, phrases[k])
	}
	w.Flush()
	return nil
}
