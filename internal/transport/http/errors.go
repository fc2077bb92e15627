package http

import (
	"errors"
	"log"
	"net/http"
	"unicode"
	"unicode/utf8"

	"live-quiz-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

var clientErrors = []struct {
	target error
	status int
}{
	{domain.ErrQuizNotFound, http.StatusNotFound},
	{domain.ErrParticipantNotFound, http.StatusNotFound},
	{domain.ErrQuestionNotFound, http.StatusNotFound},
	{domain.ErrAlreadyJoined, http.StatusConflict},
	{domain.ErrNoFile, http.StatusBadRequest},
	{domain.ErrFileTooLarge, http.StatusBadRequest},
	{domain.ErrUnsupportedImage, http.StatusBadRequest},
}

// classify maps an error to its status and client message. ok is false for
// anything that should surface as a 500.
func classify(err error) (status int, message string, ok bool) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, vErr.Message, true
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.target) {
			return ce.status, sentence(ce.target.Error()), true
		}
	}
	return http.StatusInternalServerError, internalErrorMessage, false
}

// writeError answers with {"message": ...}; unexpected errors are logged first.
func writeError(c *gin.Context, op string, err error) {
	status, message, ok := classify(err)
	if !ok {
		log.Printf("%s: %v", op, err)
	}
	c.JSON(status, gin.H{"message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
