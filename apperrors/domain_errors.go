package apperrors

var (
	// Domain errors used by services and the client core
	ErrSelfConnection      = InvalidArg("you cannot connect with yourself")
	ErrDuplicateConnection = AlreadyExists("request already sent or you are already connected")
	ErrConnectionNotFound  = NotFound("connection not found")
	ErrNotPending          = AlreadyExists("request was already answered")
	ErrNotReceiver         = Forbidden("only the receiver can answer a request")
	ErrNotAccepted         = Forbidden("messaging requires an accepted connection")
	ErrNotParticipant      = Forbidden("sender is not part of this connection")
	ErrEmptyMessage        = InvalidArg("message text cannot be empty")
	ErrGenderNotSet        = InvalidArg("set your gender to view profiles")
	ErrProfileNotVisible   = Forbidden("users only see profiles of the opposite gender")
	ErrProfileNotFound     = NotFound("profile not found")
)

func ErrStore(op string, cause error) error {
	return Unavailable("store operation failed: "+op, cause)
}
