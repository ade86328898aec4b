package core

// Mode is the conversational phase a session is in
type Mode int

const (
	ModeChooseColor Mode = iota
	ModeChooseDifficulty
	ModeUserTurn
	ModeOpponentTurn
	ModeGameOver
)

func (m Mode) String() string {
	switch m {
	case ModeChooseColor:
		return "choose_color"
	case ModeChooseDifficulty:
		return "choose_difficulty"
	case ModeUserTurn:
		return "user_turn"
	case ModeOpponentTurn:
		return "opponent_turn"
	case ModeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// State is the result of the game as seen from the board
type State int

const (
	StateOngoing State = iota
	StateWhiteWins
	StateBlackWins
	StateStalemate
	StateDraw
)

func (s State) String() string {
	switch s {
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	case StateDraw:
		return "draw"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}
