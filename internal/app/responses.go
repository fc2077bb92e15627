package app

import (
	"context"
	"fmt"
	"strings"

	"live-quiz-service/internal/domain"
)

// SubmitInput is one answer. SelectedOptionID is empty when the question timed out.
type SubmitInput struct {
	ParticipantID    string `json:"participantId" validate:"required"`
	QuestionID       string `json:"questionId" validate:"required"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// SubmitResponse appends a response for the participant. Correctness is
// decided here from the question's own options: an unknown or missing option
// is simply incorrect. Resubmitting the same question appends another row.
func (s *QuizService) SubmitResponse(ctx context.Context, in SubmitInput) (domain.Response, error) {
	in.ParticipantID = strings.TrimSpace(in.ParticipantID)
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.SelectedOptionID = strings.TrimSpace(in.SelectedOptionID)
	if err := validate(in); err != nil {
		return domain.Response{}, err
	}

	question, err := s.store.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return domain.Response{}, err
	}

	response := domain.Response{
		ID:            s.newID(),
		ParticipantID: in.ParticipantID,
		QuestionID:    question.ID,
		AnsweredAt:    s.now().UTC(),
	}
	if in.SelectedOptionID != "" {
		selected := in.SelectedOptionID
		response.SelectedOptionID = &selected
	}
	if opt, ok := question.FindOption(in.SelectedOptionID); ok {
		response.IsCorrect = opt.IsCorrect
	}

	if err := s.store.CreateResponse(ctx, response); err != nil {
		return domain.Response{}, fmt.Errorf("create response: %w", err)
	}
	return response, nil
}

// ParticipantResponses lists a participant's responses with their questions populated.
func (s *QuizService) ParticipantResponses(ctx context.Context, participantID string) ([]domain.ResponseDetail, error) {
	responses, err := s.store.ListResponses(ctx, strings.TrimSpace(participantID))
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	lookup := newQuestionLookup(s, "")
	details := make([]domain.ResponseDetail, 0, len(responses))
	for _, r := range responses {
		question, err := lookup.question(ctx, r.QuestionID)
		if err != nil {
			return nil, err
		}
		details = append(details, toDetail(r, question))
	}
	return details, nil
}
