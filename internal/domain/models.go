package domain

import "time"

// QuizStatus is the lifecycle marker of a quiz.
type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "draft"
	QuizStatusActive    QuizStatus = "active"
	QuizStatusCompleted QuizStatus = "completed"
)

const (
	// DefaultMarks is applied to questions created without marks.
	DefaultMarks = 1
	// DefaultTimeLimit is the per-question countdown in seconds.
	DefaultTimeLimit = 30
)

// Option represents a possible answer for a question.
type Option struct {
	ID         string `json:"_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// Question models a multiple-choice question. Options are embedded in the question document.
type Question struct {
	ID           string   `json:"_id"`
	QuizID       string   `json:"quizId"`
	QuestionText string   `json:"question_text"`
	ImageURL     string   `json:"image_url,omitempty"`
	Marks        int      `json:"marks"`
	TimeLimit    int      `json:"time_limit"`
	Order        int      `json:"order"`
	Options      []Option `json:"options"`
}

// FindOption returns the option with the given id, if it belongs to the question.
func (q Question) FindOption(optionID string) (Option, bool) {
	if optionID == "" {
		return Option{}, false
	}
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// Quiz is a titled, ordered collection of questions addressed by a short code.
type Quiz struct {
	ID        string     `json:"_id"`
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	AdminID   string     `json:"adminId"`
	Status    QuizStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions,omitempty"`
}

// Participant is a person who joined one quiz. (QuizID, Email) is unique.
type Participant struct {
	ID          string    `json:"_id"`
	QuizID      string    `json:"quizId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	College     string    `json:"college"`
	Branch      string    `json:"branch"`
	Year        string    `json:"year"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Response is one recorded answer. SelectedOptionID is nil when the question timed out.
type Response struct {
	ID               string    `json:"_id"`
	ParticipantID    string    `json:"participantId"`
	QuestionID       string    `json:"questionId"`
	SelectedOptionID *string   `json:"selectedOptionId"`
	IsCorrect        bool      `json:"isCorrect"`
	AnsweredAt       time.Time `json:"answeredAt"`
}

// User is the find-or-create account behind the email login. It is not a verified identity.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a free-form rating left by a visitor.
type Feedback struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResponseDetail echoes a stored response with the question it answered.
type ResponseDetail struct {
	QuestionID       string   `json:"questionId"`
	QuestionText     string   `json:"questionText"`
	SelectedOptionID *string  `json:"selectedOptionId"`
	IsCorrect        bool     `json:"isCorrect"`
	Marks            int      `json:"marks"`
	Options          []Option `json:"options"`
}

// Result is the per-participant score sheet.
type Result struct {
	Participant    Participant      `json:"participant"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Accuracy       float64          `json:"accuracy"`
	Responses      []ResponseDetail `json:"responses"`
}

// LeaderboardEntry is one ranked participant.
type LeaderboardEntry struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	Accuracy      float64 `json:"accuracy"`
}
