package memory

import (
	"context"
	"sort"
	"sync"

	"live-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store. It enforces the same
// unique constraints as the SQL schema: quiz code, (quiz, email) and user email.
type Store struct {
	mu sync.RWMutex

	quizzes      map[string]domain.Quiz
	quizOrder    []string
	codes        map[string]string
	questions    map[string]domain.Question
	participants map[string]domain.Participant
	joinOrder    map[string][]string
	joinKeys     map[string]string
	responses    map[string][]domain.Response
	users        map[string]domain.User
	feedback     []domain.Feedback
}

func NewStore() *Store {
	return &Store{
		quizzes:      make(map[string]domain.Quiz),
		codes:        make(map[string]string),
		questions:    make(map[string]domain.Question),
		participants: make(map[string]domain.Participant),
		joinOrder:    make(map[string][]string),
		joinKeys:     make(map[string]string),
		responses:    make(map[string][]domain.Response),
		users:        make(map[string]domain.User),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[quiz.Code]; taken {
		return domain.ErrDuplicateCode
	}
	header := quiz
	header.Questions = nil
	s.quizzes[quiz.ID] = header
	s.quizOrder = append(s.quizOrder, quiz.ID)
	s.codes[quiz.Code] = quiz.ID
	for _, q := range quiz.Questions {
		s.questions[q.ID] = cloneQuestion(q)
	}
	return nil
}

func (s *Store) GetQuizByID(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quizLocked(quizID)
}

func (s *Store) GetQuizByCode(_ context.Context, code string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizLocked(id)
}

// LoadQuiz lets the store act as the backing loader of a quiz cache.
func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.GetQuizByID(ctx, quizID)
}

func (s *Store) quizLocked(quizID string) (domain.Quiz, error) {
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = []domain.Question{}
	for _, q := range s.questions {
		if q.QuizID == quizID {
			quiz.Questions = append(quiz.Questions, cloneQuestion(q))
		}
	}
	sort.Slice(quiz.Questions, func(i, j int) bool {
		return quiz.Questions[i].Order < quiz.Questions[j].Order
	})
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizOrder))
	for i := len(s.quizOrder) - 1; i >= 0; i-- {
		out = append(out, s.quizzes[s.quizOrder[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (s *Store) CreateParticipant(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := joinKey(p.QuizID, p.Email)
	if _, taken := s.joinKeys[key]; taken {
		return domain.ErrDuplicateParticipant
	}
	s.participants[p.ID] = p
	s.joinKeys[key] = p.ID
	s.joinOrder[p.QuizID] = append(s.joinOrder[p.QuizID], p.ID)
	return nil
}

func (s *Store) GetParticipant(_ context.Context, participantID string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, nil
}

func (s *Store) FindParticipant(_ context.Context, quizID, email string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinKeys[joinKey(quizID, email)]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return s.participants[id], nil
}

func (s *Store) ListParticipants(_ context.Context, quizID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.joinOrder[quizID]
	out := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.participants[id])
	}
	return out, nil
}

func (s *Store) CreateResponse(_ context.Context, r domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.ParticipantID] = append(s.responses[r.ParticipantID], r)
	return nil
}

func (s *Store) ListResponses(_ context.Context, participantID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Response(nil), s.responses[participantID]...), nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[user.Email]; taken {
		return domain.ErrDuplicateEmail
	}
	s.users[user.Email] = user
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreateFeedback(_ context.Context, f domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, f)
	return nil
}

func (s *Store) ListFeedback(_ context.Context, limit int) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Feedback, 0, len(s.feedback))
	for i := len(s.feedback) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.feedback[i])
	}
	return out, nil
}

func joinKey(quizID, email string) string {
	return quizID + "\x00" + email
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option{}, q.Options...)
	return q
}
