package content

import "errors"

var (
	// ErrNotFound means the referenced category or topic does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCategory means a category with the same name exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrUnknownCategory means a topic names a category that does not exist.
	ErrUnknownCategory = errors.New("selected category does not exist")
)

// ValidationError reports client input that breaks a length, required or
// size rule. Message is safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}
