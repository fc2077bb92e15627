package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"live-quiz-service/internal/domain"
)

// Tally is the reduce over one participant's responses.
type Tally struct {
	Score   int
	Correct int
	Total   int
}

// Accuracy is the percentage of correct responses, 0 when nothing was answered.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total) * 100
}

// TallyResponses sums marks over correct responses. marks resolves a question's
// marks; unknown questions contribute nothing to the score.
func TallyResponses(responses []domain.Response, marks func(questionID string) int) Tally {
	var t Tally
	for _, r := range responses {
		t.Total++
		if !r.IsCorrect {
			continue
		}
		t.Correct++
		t.Score += marks(r.QuestionID)
	}
	return t
}

// SortLeaderboard orders by score then accuracy, both descending. Entries that
// tie on both keep their input order.
func SortLeaderboard(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Accuracy > entries[j].Accuracy
	})
}

// Results recomputes a participant's score sheet from their stored responses.
func (s *QuizService) Results(ctx context.Context, quizID, participantID string) (domain.Result, error) {
	participant, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Result{}, err
	}
	quizID = strings.TrimSpace(quizID)
	if quizID != "" && participant.QuizID != quizID {
		return domain.Result{}, domain.ErrParticipantNotFound
	}

	responses, err := s.store.ListResponses(ctx, participant.ID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("list responses: %w", err)
	}

	lookup := newQuestionLookup(s, participant.QuizID)
	details := make([]domain.ResponseDetail, 0, len(responses))
	for _, r := range responses {
		question, err := lookup.question(ctx, r.QuestionID)
		if err != nil {
			return domain.Result{}, err
		}
		details = append(details, toDetail(r, question))
	}
	tally := TallyResponses(responses, lookup.marks)

	return domain.Result{
		Participant:    participant,
		Score:          tally.Score,
		TotalQuestions: tally.Total,
		Accuracy:       tally.Accuracy(),
		Responses:      details,
	}, nil
}

// Leaderboard ranks every participant of the quiz. Nothing is cached: each
// request reloads and reduces every participant's responses.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	quizID = strings.TrimSpace(quizID)
	participants, err := s.store.ListParticipants(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	lookup := newQuestionLookup(s, quizID)
	entries := make([]domain.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		responses, err := s.store.ListResponses(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list responses for %s: %w", p.ID, err)
		}
		// Resolve questions first so marks never needs to fail.
		for _, r := range responses {
			if _, err := lookup.question(ctx, r.QuestionID); err != nil {
				return nil, err
			}
		}
		tally := TallyResponses(responses, lookup.marks)
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			Score:         tally.Score,
			Accuracy:      tally.Accuracy(),
		})
	}

	SortLeaderboard(entries)
	return entries, nil
}

// questionLookup resolves questions from the cached quiz document first and
// falls back to the store for questions outside that quiz.
type questionLookup struct {
	svc    *QuizService
	quizID string
	loaded bool
	byID   map[string]domain.Question
}

func newQuestionLookup(svc *QuizService, quizID string) *questionLookup {
	return &questionLookup{svc: svc, quizID: quizID, byID: make(map[string]domain.Question)}
}

func (l *questionLookup) question(ctx context.Context, questionID string) (domain.Question, error) {
	if !l.loaded && l.quizID != "" {
		l.loaded = true
		quiz, err := l.svc.quizzes.GetQuiz(ctx, l.quizID)
		switch {
		case err == nil:
			for _, q := range quiz.Questions {
				l.byID[q.ID] = q
			}
		case !errors.Is(err, domain.ErrQuizNotFound):
			return domain.Question{}, fmt.Errorf("load quiz: %w", err)
		}
	}
	if q, ok := l.byID[questionID]; ok {
		return q, nil
	}

	q, err := l.svc.store.GetQuestion(ctx, questionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		// Keep the response visible even though its question is gone.
		q = domain.Question{ID: questionID}
	} else if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	l.byID[questionID] = q
	return q, nil
}

// marks assumes question has already been called for questionID.
func (l *questionLookup) marks(questionID string) int {
	return l.byID[questionID].Marks
}

func toDetail(r domain.Response, q domain.Question) domain.ResponseDetail {
	options := q.Options
	if options == nil {
		options = []domain.Option{}
	}
	return domain.ResponseDetail{
		QuestionID:       r.QuestionID,
		QuestionText:     q.QuestionText,
		SelectedOptionID: r.SelectedOptionID,
		IsCorrect:        r.IsCorrect,
		Marks:            q.Marks,
		Options:          options,
	}
}
