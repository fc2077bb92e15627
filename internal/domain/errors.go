package domain

import "errors"

var (
	// ErrQuizNotFound indicates no quiz matches the given id or code.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrParticipantNotFound is returned when a participant id does not resolve.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrAlreadyJoined is returned by the join flow when (quiz, email) already has a participant.
	ErrAlreadyJoined = errors.New("you have already joined this quiz")
	// ErrDuplicateParticipant is the store-level unique violation on (quiz, email).
	ErrDuplicateParticipant = errors.New("duplicate participant")
	// ErrDuplicateCode is the store-level unique violation on quiz code.
	ErrDuplicateCode = errors.New("duplicate quiz code")
	// ErrDuplicateEmail is the store-level unique violation on user email.
	ErrDuplicateEmail = errors.New("duplicate user email")
	// ErrUserNotFound indicates no user is registered under an email.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoFile is returned when an upload request carries no image part.
	ErrNoFile = errors.New("no file uploaded")
	// ErrFileTooLarge is returned for uploads above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedImage is returned when the extension or MIME type is outside the allow-list.
	ErrUnsupportedImage = errors.New("only image files are allowed")
)

// ValidationError carries a message meant for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}
