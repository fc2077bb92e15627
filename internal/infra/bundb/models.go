package bundb

import (
	"time"

	"live-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

type QuizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        string    `bun:"id,pk"`
	Code      string    `bun:"code,notnull,unique"`
	Title     string    `bun:"title,notnull"`
	AdminID   string    `bun:"admin_id,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// QuestionRow keeps options inline as a JSON document, like the quiz editor submits them.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID           string          `bun:"id,pk"`
	QuizID       string          `bun:"quiz_id,notnull"`
	QuestionText string          `bun:"question_text,notnull"`
	ImageURL     string          `bun:"image_url,nullzero"`
	Marks        int             `bun:"marks,notnull"`
	TimeLimit    int             `bun:"time_limit,notnull"`
	Position     int             `bun:"position,notnull"`
	Options      []domain.Option `bun:"options"`
}

type ParticipantRow struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID          string    `bun:"id,pk"`
	QuizID      string    `bun:"quiz_id,notnull"`
	Name        string    `bun:"name,notnull"`
	Email       string    `bun:"email,notnull"`
	PhoneNumber string    `bun:"phone_number,notnull"`
	College     string    `bun:"college,notnull"`
	Branch      string    `bun:"branch,notnull"`
	Year        string    `bun:"year,notnull"`
	JoinedAt    time.Time `bun:"joined_at,notnull"`
}

type ResponseRow struct {
	bun.BaseModel `bun:"table:responses,alias:r"`

	ID               string    `bun:"id,pk"`
	ParticipantID    string    `bun:"participant_id,notnull"`
	QuestionID       string    `bun:"question_id,notnull"`
	SelectedOptionID *string   `bun:"selected_option_id"`
	IsCorrect        bool      `bun:"is_correct,notnull"`
	AnsweredAt       time.Time `bun:"answered_at,notnull"`
}

type UserRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email,notnull,unique"`
	Name      string    `bun:"name,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type FeedbackRow struct {
	bun.BaseModel `bun:"table:feedback,alias:f"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,nullzero"`
	Email     string    `bun:"email,nullzero"`
	Rating    int       `bun:"rating,notnull"`
	Comment   string    `bun:"comment,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Models lists every table model in creation order.
func Models() []interface{} {
	return []interface{}{
		(*QuizRow)(nil),
		(*QuestionRow)(nil),
		(*ParticipantRow)(nil),
		(*ResponseRow)(nil),
		(*UserRow)(nil),
		(*FeedbackRow)(nil),
	}
}

func quizRowFrom(q domain.Quiz) *QuizRow {
	return &QuizRow{
		ID:        q.ID,
		Code:      q.Code,
		Title:     q.Title,
		AdminID:   q.AdminID,
		Status:    string(q.Status),
		CreatedAt: q.CreatedAt,
	}
}

func (r QuizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:        r.ID,
		Code:      r.Code,
		Title:     r.Title,
		AdminID:   r.AdminID,
		Status:    domain.QuizStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func questionRowFrom(q domain.Question) QuestionRow {
	return QuestionRow{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		ImageURL:     q.ImageURL,
		Marks:        q.Marks,
		TimeLimit:    q.TimeLimit,
		Position:     q.Order,
		Options:      q.Options,
	}
}

func (r QuestionRow) toDomain() domain.Question {
	options := r.Options
	if options == nil {
		options = []domain.Option{}
	}
	return domain.Question{
		ID:           r.ID,
		QuizID:       r.QuizID,
		QuestionText: r.QuestionText,
		ImageURL:     r.ImageURL,
		Marks:        r.Marks,
		TimeLimit:    r.TimeLimit,
		Order:        r.Position,
		Options:      options,
	}
}

func participantRowFrom(p domain.Participant) *ParticipantRow {
	return &ParticipantRow{
		ID:          p.ID,
		QuizID:      p.QuizID,
		Name:        p.Name,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		College:     p.College,
		Branch:      p.Branch,
		Year:        p.Year,
		JoinedAt:    p.JoinedAt,
	}
}

func (r ParticipantRow) toDomain() domain.Participant {
	return domain.Participant{
		ID:          r.ID,
		QuizID:      r.QuizID,
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		College:     r.College,
		Branch:      r.Branch,
		Year:        r.Year,
		JoinedAt:    r.JoinedAt.UTC(),
	}
}

func (r ResponseRow) toDomain() domain.Response {
	return domain.Response{
		ID:               r.ID,
		ParticipantID:    r.ParticipantID,
		QuestionID:       r.QuestionID,
		SelectedOptionID: r.SelectedOptionID,
		IsCorrect:        r.IsCorrect,
		AnsweredAt:       r.AnsweredAt.UTC(),
	}
}

func (r UserRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      r.Role,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (r FeedbackRow) toDomain() domain.Feedback {
	return domain.Feedback{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UTC(),
	}
}
