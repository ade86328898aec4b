package core

// Request types

type CreateSessionRequest struct {
	FEN string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type UtteranceRequest struct {
	Text string `json:"text" validate:"required,max=200"`
}

type OpponentMoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // coordinate move, e.g. "e7e5"
}

// UndoRequest takes back Count moves; an omitted count takes back one
type UndoRequest struct {
	Count int `json:"count,omitempty" validate:"omitempty,min=1,max=300"`
}

type ParseRequest struct {
	Kind string `json:"kind" validate:"required,oneof=move color difficulty"`
	Text string `json:"text" validate:"max=200"` // empty text is simply not found
}

// Response types

type SessionResponse struct {
	SessionID       string    `json:"sessionId"`
	Token           string    `json:"token,omitempty"` // Only returned on creation
	FEN             string    `json:"fen"`
	Turn            string    `json:"turn"` // "w" or "b"
	Mode            string    `json:"mode"`
	State           string    `json:"state"`
	UserColor       string    `json:"userColor,omitempty"`
	Difficulty      string    `json:"difficulty,omitempty"`
	Moves           []string  `json:"moves"`
	CapturedByWhite []string  `json:"capturedByWhite"`
	CapturedByBlack []string  `json:"capturedByBlack"`
	IsCheck         bool      `json:"isCheck"`
	IsCheckmate     bool      `json:"isCheckmate"`
	IsStalemate     bool      `json:"isStalemate"`
	LastMove        *MoveInfo `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"` // coordinate form, e.g. "e2e4"
	PlayerColor string `json:"playerColor"`
	Piece       string `json:"piece"`
	Captured    string `json:"captured,omitempty"`
	Promoted    bool   `json:"promoted,omitempty"`
}

// UtteranceResponse tells the conversational layer whether the phrase was used
type UtteranceResponse struct {
	Understood bool            `json:"understood"`
	Reprompt   string          `json:"reprompt,omitempty"`
	Candidates []string        `json:"candidates,omitempty"` // Source squares when ambiguous
	Session    SessionResponse `json:"session"`
}

type ParseResponse struct {
	Kind       string `json:"kind"`
	Found      bool   `json:"found"`
	Piece      string `json:"piece,omitempty"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	Color      string `json:"color,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
