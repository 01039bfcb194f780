package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrRateLimited     = NewDomainError("RATE_LIMITED", "Too many requests, retry later")
	ErrFetchFailed     = NewDomainError("FETCH_FAILED", "External source fetch failed")
	ErrFetchTimeout    = NewDomainError("FETCH_TIMEOUT", "External source fetch timed out")
	ErrMemberNotFound  = NewDomainError("MEMBER_NOT_FOUND", "Member has no external data and no stored snapshot")
	ErrInvalidMemberNo = NewDomainError("INVALID_MEMBER_NO", "Member number must be non-empty digits")
)
