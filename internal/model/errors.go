package model

import "errors"

// Error taxonomy shared by the service, stores, and HTTP layer. Callers
// classify failures with errors.Is and wrap with fmt.Errorf("%w: ...").
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInternal           = errors.New("internal error")
)
