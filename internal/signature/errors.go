package signature

import "fmt"

// VerificationError describes why a signature was rejected. The message
// never includes the secret or the expected digest.
type VerificationError struct {
	Message string
}

func (e VerificationError) Error() string {
	return fmt.Sprintf("signature verification failed: %s", e.Message)
}

// NewVerificationError creates a new verification error
func NewVerificationError(format string, args ...interface{}) VerificationError {
	return VerificationError{
		Message: fmt.Sprintf(format, args...),
	}
}
