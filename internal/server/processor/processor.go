package processor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"chess/internal/server/board"
	"chess/internal/server/core"
	"chess/internal/server/engine"
	"chess/internal/server/game"
	"chess/internal/server/notation"
	"chess/internal/server/service"
	"chess/internal/server/transcript"
)

// FEN validation regex
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Reprompts spoken back when an utterance is not usable in the current mode
const (
	promptColor      = "Which color would you like to play, white or black?"
	promptDifficulty = "Which difficulty would you like: easy, medium or hard?"
	promptMove       = "Say a piece and a square, for example knight to f3."
	promptWaiting    = "Waiting for your opponent's move."
)

// Processor runs the conversation flow on top of the session service
type Processor struct {
	svc   *service.Service
	queue *ResolveQueue
}

// New creates a processor; parser may carry a phrase resolver for difficulty words
func New(svc *service.Service, parser *transcript.DifficultyParser) *Processor {
	return &Processor{
		svc:   svc,
		queue: NewResolveQueue(parser, 2), // 2 workers for resolver lookups
	}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateSession:
		return p.handleCreateSession(cmd)
	case CmdGetSession:
		return p.handleGetSession(cmd)
	case CmdDeleteSession:
		return p.handleDeleteSession(cmd)
	case CmdUtterance:
		return p.handleUtterance(ctx, cmd)
	case CmdOpponentMove:
		return p.handleOpponentMove(cmd)
	case CmdUndo:
		return p.handleUndo(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdParse:
		return p.handleParse(ctx, cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe check for control characters and FEN pattern match
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) && r != ' ' {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

// handleCreateSession starts a session from the standard or a custom position
func (p *Processor) handleCreateSession(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateSessionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	start := board.InitialPosition()
	if fen := strings.TrimSpace(args.FEN); fen != "" {
		if !p.isFENSafe(fen) {
			return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
		}
		pos, err := game.ValidateFEN(fen)
		if err != nil {
			return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.ErrInvalidFEN)
		}
		start = pos
	}

	id, err := p.svc.CreateSession(start)
	if err != nil {
		if errors.Is(err, service.ErrSessionLimit) {
			return p.errorResponse("too many active sessions", core.ErrResourceLimit)
		}
		return p.errorResponse(fmt.Sprintf("failed to create session: %v", err), core.ErrInternalError)
	}

	token, err := p.svc.GenerateSessionToken(id)
	if err != nil {
		p.svc.DeleteSession(id)
		return p.errorResponse("failed to issue session token", core.ErrInternalError)
	}

	var resp core.SessionResponse
	if err := p.svc.View(id, func(s *game.Session) { resp = p.buildSessionResponse(s) }); err != nil {
		return p.errorResponse("session creation failed", core.ErrInternalError)
	}
	resp.Token = token

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleGetSession retrieves session state
func (p *Processor) handleGetSession(cmd Command) ProcessorResponse {
	var resp core.SessionResponse
	if err := p.svc.View(cmd.SessionID, func(s *game.Session) { resp = p.buildSessionResponse(s) }); err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleDeleteSession removes a session
func (p *Processor) handleDeleteSession(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteSession(cmd.SessionID); err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.View(cmd.SessionID, func(s *game.Session) {
		pos := s.Position()
		resp = core.BoardResponse{
			FEN:   pos.FEN(),
			Board: pos.Board.ASCII(),
		}
	})
	if err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleUndo reverts moves
func (p *Processor) handleUndo(cmd Command) ProcessorResponse {
	args, _ := cmd.Args.(core.UndoRequest)
	if args.Count == 0 {
		args.Count = 1
	}

	var resp core.SessionResponse
	err := p.svc.Update(cmd.SessionID, func(s *game.Session) error {
		if err := s.UndoMoves(args.Count); err != nil {
			return err
		}
		resp = p.buildSessionResponse(s)
		return nil
	})
	if errors.Is(err, service.ErrSessionNotFound) {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleUtterance routes a transcript to the parser the session mode expects.
// An utterance that cannot be used is answered with a reprompt, not an error.
func (p *Processor) handleUtterance(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.UtteranceRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	var mode core.Mode
	if err := p.svc.View(cmd.SessionID, func(s *game.Session) { mode = s.Mode() }); err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}

	// Parsing happens outside the session lock; the mode is checked again when applying
	var apply func(*game.Session) (understood bool, reprompt string, candidates []string)
	switch mode {
	case core.ModeChooseColor:
		color, found := transcript.ParseColor(args.Text)
		apply = func(s *game.Session) (bool, string, []string) {
			if !found {
				return false, promptColor, nil
			}
			s.SetUserColor(color)
			s.SetMode(core.ModeChooseDifficulty)
			return true, "", nil
		}

	case core.ModeChooseDifficulty:
		d, found := p.queue.Resolve(ctx, args.Text)
		apply = func(s *game.Session) (bool, string, []string) {
			if !found {
				return false, promptDifficulty, nil
			}
			s.SetDifficulty(d)
			s.SetMode(s.TurnMode())
			return true, "", nil
		}

	case core.ModeUserTurn:
		mv, found := transcript.ParseMove(args.Text)
		square, named := transcript.ParseSquare(args.Text)
		apply = func(s *game.Session) (bool, string, []string) {
			if c, ok := pendingChoice(s, mv, found, square, named); ok {
				return p.applyUserMove(s, c)
			}
			if !found {
				if pending := s.Pending(); len(pending) > 0 {
					return false, whichOne(s, pending), sourcesOf(pending)
				}
				return false, promptMove, nil
			}
			return p.playUserMove(s, mv)
		}

	default:
		apply = func(s *game.Session) (bool, string, []string) {
			if s.Mode() == core.ModeGameOver {
				return false, fmt.Sprintf("The game is over: %s.", s.State()), nil
			}
			return false, promptWaiting, nil
		}
	}

	var resp core.UtteranceResponse
	err := p.svc.Update(cmd.SessionID, func(s *game.Session) error {
		if s.Mode() != mode {
			resp.Reprompt = "Sorry, the game moved on. Please try again."
		} else {
			resp.Understood, resp.Reprompt, resp.Candidates = apply(s)
		}
		resp.Session = p.buildSessionResponse(s)
		return nil
	})
	if err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// playUserMove resolves a parsed phrase to exactly one legal move and plays
// it. Several matches leave a pending question on the session.
func (p *Processor) playUserMove(s *game.Session, mv transcript.Move) (bool, string, []string) {
	s.ClearPending()
	color := s.UserColor()
	piece := mv.Piece.BoardPiece(color)
	name := board.PieceName(piece)

	candidates := engine.LegalMoves(s.Position().Board, color, piece, mv.Square())
	if src, ok := mv.From(); ok {
		var from []engine.Candidate
		for _, c := range candidates {
			if c.Source == src {
				from = append(from, c)
			}
		}
		if len(from) == 0 {
			return false, fmt.Sprintf("No %s on %s can move to %s. %s", name, mv.Source, mv.Target, promptMove), nil
		}
		candidates = from
	}

	switch len(candidates) {
	case 0:
		if kind := unsupportedTo(s.Position(), piece, mv.Square()); kind != "" {
			return false, fmt.Sprintf("Sorry, %s is not supported. %s", kind, promptMove), nil
		}
		return false, fmt.Sprintf("No %s can move to %s. %s", name, mv.Target, promptMove), nil
	case 1:
		return p.applyUserMove(s, candidates[0])
	default:
		s.SetPending(candidates)
		return false, whichOne(s, candidates), sourcesOf(candidates)
	}
}

func (p *Processor) applyUserMove(s *game.Session, c engine.Candidate) (bool, string, []string) {
	if _, err := s.ApplyMove(c); err != nil {
		return false, err.Error(), nil
	}
	return true, "", nil
}

// pendingChoice answers an open "which one?" question from a bare square
// ("a1", "the one on a1") or a piece on a square ("rook on a1")
func pendingChoice(s *game.Session, mv transcript.Move, found bool, square string, named bool) (engine.Candidate, bool) {
	pending := s.Pending()
	if len(pending) == 0 {
		return engine.Candidate{}, false
	}

	var answer string
	switch {
	case found && mv.Source == "":
		kind := board.Kind(s.Position().Board.At(pending[0].Source))
		if mv.Piece.Kind() != kind {
			return engine.Candidate{}, false
		}
		answer = mv.Target
	case !found && named:
		answer = square
	default:
		return engine.Candidate{}, false
	}

	sq, ok := notation.FromAlgebraic(answer)
	if !ok {
		return engine.Candidate{}, false
	}
	return s.ChoosePending(sq)
}

// unsupportedTo reports whether some piece could reach target only by
// castling or en passant
func unsupportedTo(pos board.Position, piece byte, target notation.Square) string {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			src := notation.Square{Rank: r, File: f}
			if pos.Board.At(src) != piece {
				continue
			}
			if kind := game.UnsupportedMove(pos, src, target); kind != "" {
				return kind
			}
		}
	}
	return ""
}

func whichOne(s *game.Session, candidates []engine.Candidate) string {
	name := board.PieceName(s.Position().Board.At(candidates[0].Source))
	return fmt.Sprintf("Which %s, the one on %s?", name, strings.Join(sourcesOf(candidates), " or "))
}

func sourcesOf(candidates []engine.Candidate) []string {
	sources := make([]string, len(candidates))
	for i, c := range candidates {
		sources[i] = c.Source.Algebraic()
	}
	return sources
}

// handleOpponentMove applies a coordinate move from the external move chooser
func (p *Processor) handleOpponentMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.OpponentMoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))
	from, to, promo, ok := notation.ParseUCI(move)
	if !ok {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}
	// Pawns always promote to a queen
	if promo != 0 && promo != 'q' {
		return p.errorResponse("only queen promotion is supported", core.ErrInvalidMove)
	}

	var resp core.SessionResponse
	var code string
	err := p.svc.Update(cmd.SessionID, func(s *game.Session) error {
		switch s.Mode() {
		case core.ModeOpponentTurn:
		case core.ModeGameOver:
			code = core.ErrGameOver
			return fmt.Errorf("game is over: %s", s.State())
		default:
			code = core.ErrNotOpponentTurn
			return fmt.Errorf("not opponent's turn (%s)", s.Mode())
		}

		pos := s.Position()
		piece := pos.Board.At(from)
		if owner, ok := board.ColorOf(piece); !ok || owner != pos.Turn {
			code = core.ErrInvalidMove
			return fmt.Errorf("no %s piece on %s", pos.Turn.Name(), from)
		}
		if kind := game.UnsupportedMove(pos, from, to); kind != "" {
			code = core.ErrUnsupportedMove
			return fmt.Errorf("%s is not supported: %s", kind, move)
		}

		legal := false
		for _, c := range engine.LegalMoves(pos.Board, pos.Turn, piece, to) {
			if c.Source == from {
				legal = true
				break
			}
		}
		if !legal {
			code = core.ErrInvalidMove
			return fmt.Errorf("illegal move: %s", move)
		}

		if _, err := s.ApplyMove(engine.Candidate{Source: from, Target: to}); err != nil {
			code = core.ErrInvalidMove
			return err
		}
		resp = p.buildSessionResponse(s)
		return nil
	})
	if errors.Is(err, service.ErrSessionNotFound) {
		return p.errorResponse("session not found", core.ErrSessionNotFound)
	}
	if err != nil {
		return p.errorResponse(err.Error(), code)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleParse runs one transcript parser without touching any session
func (p *Processor) handleParse(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ParseRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	resp := core.ParseResponse{Kind: args.Kind}
	switch args.Kind {
	case "move":
		if mv, found := transcript.ParseMove(args.Text); found {
			resp.Found = true
			resp.Piece = mv.Piece.String()
			resp.Source = mv.Source
			resp.Target = mv.Target
		}
	case "color":
		if c, found := transcript.ParseColor(args.Text); found {
			resp.Found = true
			resp.Color = c.Name()
		}
	case "difficulty":
		if d, found := p.queue.Resolve(ctx, args.Text); found {
			resp.Found = true
			resp.Difficulty = d.String()
		}
	default:
		return p.errorResponse("unknown parse kind", core.ErrInvalidRequest)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// buildSessionResponse constructs standard session response
func (p *Processor) buildSessionResponse(s *game.Session) core.SessionResponse {
	status := s.Status()
	resp := core.SessionResponse{
		SessionID:       s.ID(),
		FEN:             s.FEN(),
		Turn:            s.Turn().String(),
		Mode:            s.Mode().String(),
		State:           status.State.String(),
		Moves:           s.Moves(),
		CapturedByWhite: s.CapturedBy(core.ColorWhite),
		CapturedByBlack: s.CapturedBy(core.ColorBlack),
		IsCheck:         status.IsCheck,
		IsCheckmate:     status.IsCheckmate,
		IsStalemate:     status.IsStalemate,
	}
	if s.UserColor() != 0 {
		resp.UserColor = s.UserColor().Name()
	}
	if s.Difficulty() != 0 {
		resp.Difficulty = s.Difficulty().String()
	}

	// Include last move if available
	if m := s.LastMove(); m != nil {
		info := &core.MoveInfo{
			Move:        m.UCI,
			PlayerColor: m.Color.String(),
			Piece:       board.PieceName(m.Piece),
			Promoted:    m.Promoted,
		}
		if !board.IsEmpty(m.Captured) {
			info.Captured = board.PieceName(m.Captured)
		}
		resp.LastMove = info
	}

	return resp
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close cleans up resources
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
