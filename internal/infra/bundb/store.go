package bundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"live-quiz-service/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store implements app.Store on top of bun. The same queries run against
// PostgreSQL in production and SQLite for local runs and tests.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// OpenPostgres connects through bun's pgdriver.
func OpenPostgres(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// OpenSQLite opens (or creates) a SQLite database file.
func OpenSQLite(path string) (*bun.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between our own goroutines.
	sqldb.SetMaxOpenConns(1)
	if _, err := sqldb.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(quizRowFrom(quiz)).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateCode, quiz.Code)
			}
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(quiz.Questions) == 0 {
			return nil
		}
		rows := make([]QuestionRow, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			rows = append(rows, questionRowFrom(q))
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func (s *Store) GetQuizByID(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.getQuiz(ctx, "id = ?", quizID)
}

func (s *Store) GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	return s.getQuiz(ctx, "code = ?", code)
}

// LoadQuiz lets the store act as the backing loader of a quiz cache.
func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.GetQuizByID(ctx, quizID)
}

func (s *Store) getQuiz(ctx context.Context, where string, arg string) (domain.Quiz, error) {
	var row QuizRow
	if err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}

	var questions []QuestionRow
	if err := s.db.NewSelect().Model(&questions).
		Where("quiz_id = ?", row.ID).
		Order("position ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("select questions: %w", err)
	}

	quiz := row.toDomain()
	quiz.Questions = make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, q.toDomain())
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []QuizRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	var row QuestionRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", questionID).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateParticipant(ctx context.Context, p domain.Participant) error {
	if _, err := s.db.NewInsert().Model(participantRowFrom(p)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateParticipant
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	var row ParticipantRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", participantID).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, domain.ErrParticipantNotFound
		}
		return domain.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindParticipant(ctx context.Context, quizID, email string) (domain.Participant, error) {
	var row ParticipantRow
	err := s.db.NewSelect().Model(&row).
		Where("quiz_id = ?", quizID).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, domain.ErrParticipantNotFound
		}
		return domain.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error) {
	var rows []ParticipantRow
	if err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("joined_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	out := make([]domain.Participant, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateResponse(ctx context.Context, r domain.Response) error {
	row := &ResponseRow{
		ID:               r.ID,
		ParticipantID:    r.ParticipantID,
		QuestionID:       r.QuestionID,
		SelectedOptionID: r.SelectedOptionID,
		IsCorrect:        r.IsCorrect,
		AnsweredAt:       r.AnsweredAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *Store) ListResponses(ctx context.Context, participantID string) ([]domain.Response, error) {
	var rows []ResponseRow
	if err := s.db.NewSelect().Model(&rows).
		Where("participant_id = ?", participantID).
		Order("answered_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	out := make([]domain.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	row := &UserRow{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row UserRow
	if err := s.db.NewSelect().Model(&row).Where("email = ?", email).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateFeedback(ctx context.Context, f domain.Feedback) error {
	row := &FeedbackRow{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *Store) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	var rows []FeedbackRow
	q := s.db.NewSelect().Model(&rows).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select feedback: %w", err)
	}
	out := make([]domain.Feedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// isUniqueViolation recognises unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
