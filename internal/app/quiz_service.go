package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"live-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// QuizStore persists quizzes together with their questions.
type QuizStore interface {
	// CreateQuiz stores the quiz and all of its questions atomically.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuizByID(ctx context.Context, quizID string) (domain.Quiz, error)
	GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
	// ListQuizzes returns quiz headers (no questions), newest first.
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// ParticipantStore persists participants. CreateParticipant must return
// domain.ErrDuplicateParticipant when (quizID, email) already exists.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, participantID string) (domain.Participant, error)
	FindParticipant(ctx context.Context, quizID, email string) (domain.Participant, error)
	// ListParticipants returns a quiz's participants in join order.
	ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error)
}

// ResponseStore is the append-only response log.
type ResponseStore interface {
	CreateResponse(ctx context.Context, response domain.Response) error
	// ListResponses returns a participant's responses in submission order.
	ListResponses(ctx context.Context, participantID string) ([]domain.Response, error)
}

// UserStore backs the email login.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// FeedbackStore keeps visitor feedback.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, feedback domain.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error)
}

// Store is everything the service persists.
type Store interface {
	QuizStore
	ParticipantStore
	ResponseStore
	UserStore
	FeedbackStore
}

// QuizRepository loads quiz documents by id (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizService contains the quiz platform use cases.
type QuizService struct {
	store   Store
	quizzes QuizRepository

	now     func() time.Time
	newID   func() string
	newCode func() string
}

// Option customises a QuizService.
type Option func(*QuizService)

// WithClock overrides the time source, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithCodeGenerator overrides quiz code generation.
func WithCodeGenerator(gen func() string) Option {
	return func(s *QuizService) { s.newCode = gen }
}

func NewQuizService(store Store, quizzes QuizRepository, opts ...Option) *QuizService {
	s := &QuizService{
		store:   store,
		quizzes: quizzes,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		newCode: GenerateQuizCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuizInput is the admin's quiz definition.
type CreateQuizInput struct {
	Title     string          `json:"title" validate:"required,max=200"`
	AdminID   string          `json:"adminId" validate:"required"`
	Questions []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type QuestionInput struct {
	QuestionText string        `json:"question_text" validate:"required,max=500"`
	ImageURL     string        `json:"image_url" validate:"omitempty,max=2048"`
	Marks        int           `json:"marks" validate:"omitempty,min=1,max=100"`
	TimeLimit    int           `json:"time_limit" validate:"omitempty,min=10,max=300"`
	Options      []OptionInput `json:"options" validate:"required,min=1,dive"`
}

type OptionInput struct {
	OptionText string `json:"option_text" validate:"required,max=200"`
	IsCorrect  bool   `json:"is_correct"`
}

// CreateQuiz validates the definition, assigns a code and ids, and persists it.
// A code collision is not retried; it surfaces as domain.ErrDuplicateCode.
func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (domain.Quiz, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.AdminID = strings.TrimSpace(in.AdminID)
	if err := validate(in); err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:        s.newID(),
		Code:      strings.ToUpper(s.newCode()),
		Title:     in.Title,
		AdminID:   in.AdminID,
		Status:    domain.QuizStatusActive,
		CreatedAt: s.now().UTC(),
		Questions: make([]domain.Question, 0, len(in.Questions)),
	}
	for i, q := range in.Questions {
		question := domain.Question{
			ID:           s.newID(),
			QuizID:       quiz.ID,
			QuestionText: strings.TrimSpace(q.QuestionText),
			ImageURL:     strings.TrimSpace(q.ImageURL),
			Marks:        q.Marks,
			TimeLimit:    q.TimeLimit,
			Order:        i,
			Options:      make([]domain.Option, 0, len(q.Options)),
		}
		if question.Marks == 0 {
			question.Marks = domain.DefaultMarks
		}
		if question.TimeLimit == 0 {
			question.TimeLimit = domain.DefaultTimeLimit
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, domain.Option{
				ID:         s.newID(),
				OptionText: strings.TrimSpace(opt.OptionText),
				IsCorrect:  opt.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// GetQuizByCode resolves a participant-facing code. Lookup is case-insensitive;
// malformed codes never reach the store.
func (s *QuizService) GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidQuizCode(code) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.store.GetQuizByCode(ctx, code)
}

// GetQuiz returns a quiz document by id through the quiz cache.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quizID = strings.TrimSpace(quizID)
	if quizID == "" {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListQuizzes returns every quiz header, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}
