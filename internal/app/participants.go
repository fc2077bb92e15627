package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"live-quiz-service/internal/domain"
)

// JoinInput is the participant profile submitted on the join page.
type JoinInput struct {
	QuizCode    string `json:"quizCode" validate:"required"`
	Name        string `json:"name" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,emailshape"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10"`
	College     string `json:"college" validate:"required"`
	Branch      string `json:"branch" validate:"required"`
	Year        string `json:"year" validate:"required"`
}

// Join registers a participant for the quiz behind in.QuizCode.
//
// When the email already joined the quiz, the existing participant is returned
// together with domain.ErrAlreadyJoined. The store's unique constraint is the
// source of truth; the lookup beforehand only short-circuits the common case.
func (s *QuizService) Join(ctx context.Context, in JoinInput) (domain.Participant, error) {
	in = normalizeJoin(in)
	if err := validate(in); err != nil {
		return domain.Participant{}, err
	}

	quiz, err := s.GetQuizByCode(ctx, in.QuizCode)
	if err != nil {
		return domain.Participant{}, err
	}

	existing, err := s.store.FindParticipant(ctx, quiz.ID, in.Email)
	switch {
	case err == nil:
		return existing, domain.ErrAlreadyJoined
	case !errors.Is(err, domain.ErrParticipantNotFound):
		return domain.Participant{}, fmt.Errorf("find participant: %w", err)
	}

	participant := domain.Participant{
		ID:          s.newID(),
		QuizID:      quiz.ID,
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		College:     in.College,
		Branch:      in.Branch,
		Year:        in.Year,
		JoinedAt:    s.now().UTC(),
	}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrDuplicateParticipant) {
			// Lost the race against a concurrent join with the same email.
			winner, findErr := s.store.FindParticipant(ctx, quiz.ID, in.Email)
			if findErr != nil {
				return domain.Participant{}, domain.ErrAlreadyJoined
			}
			return winner, domain.ErrAlreadyJoined
		}
		return domain.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	return participant, nil
}

// GetParticipant returns a participant by id.
func (s *QuizService) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return s.store.GetParticipant(ctx, participantID)
}

func normalizeJoin(in JoinInput) JoinInput {
	in.QuizCode = strings.TrimSpace(in.QuizCode)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.College = strings.TrimSpace(in.College)
	in.Branch = strings.TrimSpace(in.Branch)
	in.Year = strings.TrimSpace(in.Year)
	return in
}
