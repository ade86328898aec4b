package processor

import (
	"chess/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateSession CommandType = iota
	CmdGetSession
	CmdDeleteSession
	CmdUtterance
	CmdOpponentMove
	CmdUndo
	CmdGetBoard
	CmdParse
)

// Command is a unified structure for all processor operations
type Command struct {
	Type      CommandType
	SessionID string // For session-specific commands
	Args      any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateSessionCommand(req core.CreateSessionRequest) Command {
	return Command{
		Type: CmdCreateSession,
		Args: req,
	}
}

func NewGetSessionCommand(sessionID string) Command {
	return Command{
		Type:      CmdGetSession,
		SessionID: sessionID,
	}
}

func NewDeleteSessionCommand(sessionID string) Command {
	return Command{
		Type:      CmdDeleteSession,
		SessionID: sessionID,
	}
}

func NewUtteranceCommand(sessionID string, req core.UtteranceRequest) Command {
	return Command{
		Type:      CmdUtterance,
		SessionID: sessionID,
		Args:      req,
	}
}

func NewOpponentMoveCommand(sessionID string, req core.OpponentMoveRequest) Command {
	return Command{
		Type:      CmdOpponentMove,
		SessionID: sessionID,
		Args:      req,
	}
}

func NewUndoCommand(sessionID string, req core.UndoRequest) Command {
	return Command{
		Type:      CmdUndo,
		SessionID: sessionID,
		Args:      req,
	}
}

func NewGetBoardCommand(sessionID string) Command {
	return Command{
		Type:      CmdGetBoard,
		SessionID: sessionID,
	}
}

func NewParseCommand(req core.ParseRequest) Command {
	return Command{
		Type: CmdParse,
		Args: req,
	}
}
