package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")
	ErrNotFound       = fmt.Errorf("not found")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Credential & authentication errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrAuthExpired        = fmt.Errorf("access token expired")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// External API errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrQuotaExceeded    = fmt.Errorf("API quota exceeded")
	ErrRateLimited      = fmt.Errorf("rate limited")
	ErrTransient        = fmt.Errorf("transient API failure")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Engine errors
	ErrNeedsRetry        = fmt.Errorf("search needs retry")
	ErrInvalidTransition = fmt.Errorf("invalid review transition")
	ErrSessionFinalized  = fmt.Errorf("session already finalized")
	ErrTitleNotFound     = fmt.Errorf("title not found in session")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
