package app

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

// QuizCodeLength is the number of characters in a participant-facing quiz code.
const QuizCodeLength = 6

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var quizCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GenerateQuizCode draws QuizCodeLength base-36 characters and upper-cases them.
// Uniqueness is left to the store.
func GenerateQuizCode() string {
	var b strings.Builder
	b.Grow(QuizCodeLength)
	for i := 0; i < QuizCodeLength; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return strings.ToUpper(b.String())
}

// ValidQuizCode reports whether code has the canonical quiz code shape.
func ValidQuizCode(code string) bool {
	return quizCodePattern.MatchString(code)
}
