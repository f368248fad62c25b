package coachdto

// Error codes forwarded to the reasoning layer. They mirror the internal
// error taxonomy one to one.
const (
	CodeInvalidPosition   = "invalid_position"
	CodeIllegalMove       = "illegal_move"
	CodeEmptyHistory      = "empty_history"
	CodeEngineUnavailable = "engine_unavailable"
	CodeEngineTimeout     = "engine_timeout"
	CodeEngineProtocol    = "engine_protocol_error"
)

// DomainError is the boundary error shape handed to downstream consumers.
// LegalMoves is populated only for illegal-move rejections so the caller can
// offer alternatives.
type DomainError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Retryable  bool     `json:"retryable"`
	LegalMoves []string `json:"legal_moves,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "coach error"
}
