package errors

import "fmt"

// Store operation categories. Each wraps the underlying transport failure.
var (
	ErrUnauthenticated = fmt.Errorf("user not authenticated")
	ErrLoad            = fmt.Errorf("failed to load")
	ErrSend            = fmt.Errorf("failed to send message")
	ErrCreate          = fmt.Errorf("failed to create project")
	ErrUpdate          = fmt.Errorf("failed to update project")
	ErrDelete          = fmt.Errorf("failed to delete project")
	ErrMessage         = fmt.Errorf("failed to add message")
	ErrSubscribe       = fmt.Errorf("failed to subscribe")
	ErrInconsistency   = fmt.Errorf("local state diverged from remote")
)

var (
	ErrEmptyMessage     = fmt.Errorf("message body is empty")
	ErrInvalidRecipient = fmt.Errorf("invalid recipient")
	ErrInvalidProject   = fmt.Errorf("invalid project fields")
	ErrSelfConversation = fmt.Errorf("message addressed to its own sender")
	ErrForeignMessage   = fmt.Errorf("message does not involve the timeline owner")
	ErrNotFound         = fmt.Errorf("record not found")
	ErrClosed           = fmt.Errorf("store closed")
	ErrGateway          = fmt.Errorf("gateway returned errors")
)

var (
	ErrInsufficientCredits = fmt.Errorf("not enough credits")
	ErrInvalidAmount       = fmt.Errorf("credit amount must be positive")
	ErrUnknownPlan         = fmt.Errorf("unknown service plan")
	ErrInference           = fmt.Errorf("ai generation failed")
	ErrJournal             = fmt.Errorf("credit transaction not journaled")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
)
