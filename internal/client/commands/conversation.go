package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chess/internal/client/display"
	"chess/internal/server/core"
)

func (r *Registry) registerConversationCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game, optionally from a FEN",
		Usage:       "new [fen]",
		Handler:     newSessionHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Switch to an existing session",
		Usage:       "join <sessionId> [token]",
		Handler:     joinHandler,
	})

	r.Register(&Command{
		Name:        "say",
		ShortName:   "'",
		Description: "Say something to the game",
		Usage:       "say <text>",
		Handler:     sayHandler,
	})

	r.Register(&Command{
		Name:        "opponent",
		ShortName:   "o",
		Description: "Play the opponent's move in coordinate form",
		Usage:       "opponent <e7e5>",
		Handler:     opponentHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Take back moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw session JSON",
		Usage:       "state",
		Handler:     stateHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete the current session",
		Usage:       "delete",
		Handler:     deleteHandler,
	})

	r.Register(&Command{
		Name:        "parse",
		ShortName:   "p",
		Description: "Try a parser without a game",
		Usage:       "parse <move|color|difficulty> <text>",
		Handler:     parseHandler,
	})
}

func (r *Registry) requireSession() error {
	if r.session.SessionID == "" {
		return fmt.Errorf("no active session, use 'new' or 'join'")
	}
	return nil
}

// update stores the latest session state and prints what changed
func (r *Registry) update(state *core.SessionResponse) {
	r.session.State = state
	if m := state.LastMove; m != nil {
		line := fmt.Sprintf("Last move: %s %s (%s)", display.ColorForTurn(m.PlayerColor), m.Piece, m.Move)
		if m.Captured != "" {
			line += ", took " + m.Captured
		}
		fmt.Fprintln(r.out, line)
	}
	if state.IsCheckmate {
		display.Println(r.out, display.Magenta, "Checkmate: "+state.State)
	} else if state.IsStalemate {
		display.Println(r.out, display.Magenta, "Stalemate")
	} else if state.IsCheck {
		display.Println(r.out, display.Magenta, "Check")
	}
	display.Println(r.out, display.Cyan, nextStep(state))
}

// nextStep tells the user what the game is waiting for
func nextStep(state *core.SessionResponse) string {
	switch state.Mode {
	case core.ModeChooseColor.String():
		return "Which color would you like to play, white or black?"
	case core.ModeChooseDifficulty.String():
		return "Which difficulty: easy, medium or hard?"
	case core.ModeUserTurn.String():
		return "Your move."
	case core.ModeOpponentTurn.String():
		return "Waiting for the opponent's move ('opponent <move>')."
	default:
		return "Game over: " + state.State
	}
}

func newSessionHandler(r *Registry, args []string) error {
	fen := strings.Join(args, " ")
	resp, err := r.session.Client.CreateSession(fen)
	if err != nil {
		return err
	}

	r.session.Join(resp.SessionID, resp.Token)
	fmt.Fprintf(r.out, "%sSession created: %s%s\n", display.Green, resp.SessionID, display.Reset)
	r.update(resp)
	return nil
}

func joinHandler(r *Registry, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <sessionId> [token]")
	}
	token := ""
	if len(args) > 1 {
		token = args[1]
	}

	resp, err := r.session.Client.GetSession(args[0])
	if err != nil {
		return err
	}

	r.session.Join(resp.SessionID, token)
	if token == "" {
		display.Println(r.out, display.Yellow, "Joined read-only: no token given")
	}
	r.update(resp)
	return nil
}

func sayHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: say <text>")
	}

	resp, err := r.session.Client.Say(r.session.SessionID, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if !resp.Understood {
		display.Println(r.out, display.Yellow, resp.Reprompt)
		r.session.State = &resp.Session
		return nil
	}
	r.update(&resp.Session)
	return nil
}

func opponentHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: opponent <move>")
	}

	resp, err := r.session.Client.OpponentMove(r.session.SessionID, args[0])
	if err != nil {
		return err
	}
	r.update(resp)
	return nil
}

func undoHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		count = n
	}

	resp, err := r.session.Client.Undo(r.session.SessionID, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Took back %d move(s)\n", count)
	r.update(resp)
	return nil
}

func showHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	b, err := r.session.Client.GetBoard(r.session.SessionID)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	display.RenderBoard(r.out, b.Board)
	fmt.Fprintf(r.out, "\nFEN: %s\n", b.FEN)

	state, err := r.session.Client.GetSession(r.session.SessionID)
	if err != nil {
		return err
	}
	r.session.State = state
	fmt.Fprintf(r.out, "Turn: %s  Mode: %s  State: %s\n", display.ColorForTurn(state.Turn), state.Mode, state.State)
	if len(state.Moves) > 0 {
		fmt.Fprintf(r.out, "Moves: %s\n", strings.Join(state.Moves, " "))
	}
	if len(state.CapturedByWhite) > 0 || len(state.CapturedByBlack) > 0 {
		fmt.Fprintf(r.out, "Captured by white: %s  by black: %s\n",
			strings.Join(state.CapturedByWhite, ""), strings.Join(state.CapturedByBlack, ""))
	}
	return nil
}

func stateHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	state, err := r.session.Client.GetSession(r.session.SessionID)
	if err != nil {
		return err
	}
	r.session.State = state
	display.PrettyPrintJSON(r.out, state)
	return nil
}

func deleteHandler(r *Registry, args []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if err := r.session.Client.DeleteSession(r.session.SessionID); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%sSession deleted%s\n", display.Green, display.Reset)
	r.session.Leave()
	return nil
}

func parseHandler(r *Registry, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: parse <move|color|difficulty> <text>")
	}

	resp, err := r.session.Client.Parse(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	if !resp.Found {
		display.Println(r.out, display.Yellow, "Not understood")
		return nil
	}
	switch resp.Kind {
	case "move":
		if resp.Source != "" {
			fmt.Fprintf(r.out, "Piece %s from %s to %s\n", resp.Piece, resp.Source, resp.Target)
		} else {
			fmt.Fprintf(r.out, "Piece %s to %s\n", resp.Piece, resp.Target)
		}
	case "color":
		fmt.Fprintf(r.out, "Color: %s\n", resp.Color)
	case "difficulty":
		fmt.Fprintf(r.out, "Difficulty: %s\n", resp.Difficulty)
	}
	return nil
}
