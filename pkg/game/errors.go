package game

// Rejection codes for actions the engine refuses. All of them are
// client-correctable and leave the match state untouched.
const (
	CodeNotYourTurn = "NOT_YOUR_TURN"
	CodePaused      = "PAUSED"
	CodeBadPhase    = "BAD_PHASE"
	CodeBadPiece    = "BAD_PIECE"
	CodeIllegal     = "ILLEGAL"
	CodeBadNode     = "BAD_NODE"
)

// Rejection is an error with a machine-readable code, reported back to the
// requesting connection only.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Code + ": " + r.Message
}

// Reject builds a Rejection error.
func Reject(code, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}
