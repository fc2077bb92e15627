package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"live-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// loadQuizSQL assembles the quiz header and its ordered questions in one round trip.
const loadQuizSQL = `
SELECT q.id, q.code, q.title, q.admin_id, q.status, q.created_at,
       COALESCE(
         json_agg(json_build_object(
           '_id', qs.id,
           'quizId', qs.quiz_id,
           'question_text', qs.question_text,
           'image_url', qs.image_url,
           'marks', qs.marks,
           'time_limit', qs.time_limit,
           'order', qs.position,
           'options', qs.options
         ) ORDER BY qs.position) FILTER (WHERE qs.id IS NOT NULL),
         '[]'
       )
FROM quizzes q
LEFT JOIN questions qs ON qs.quiz_id = q.id
WHERE q.id = $1
GROUP BY q.id`

// QuizLoader feeds the quiz caches straight from Postgres over a pgx pool.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz   domain.Quiz
		status string
		raw    []byte
	)
	err := l.pool.QueryRow(ctx, loadQuizSQL, quizID).Scan(
		&quiz.ID, &quiz.Code, &quiz.Title, &quiz.AdminID, &status, &quiz.CreatedAt, &raw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Status = domain.QuizStatus(status)
	quiz.CreatedAt = quiz.CreatedAt.UTC()

	if err := json.Unmarshal(raw, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].Options == nil {
			quiz.Questions[i].Options = []domain.Option{}
		}
	}
	return quiz, nil
}
