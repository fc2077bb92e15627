package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"live-quiz-service/internal/domain"
)

const (
	defaultUserRole   = "user"
	feedbackListLimit = 50
)

// LoginInput is the email-only login body. There is no password: the caller is
// trusted to be whoever the email says, and no server-side session is created.
type LoginInput struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"max=100"`
}

// Login finds or creates the user registered under the email.
func (s *QuizService) Login(ctx context.Context, in LoginInput) (domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return domain.User{}, err
	}

	user, err := s.store.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	name := in.Name
	if name == "" {
		name, _, _ = strings.Cut(in.Email, "@")
	}
	user = domain.User{
		ID:        s.newID(),
		Email:     in.Email,
		Name:      name,
		Role:      defaultUserRole,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return s.store.FindUserByEmail(ctx, in.Email)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FeedbackInput is a visitor rating.
type FeedbackInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
	Name    string `json:"name" validate:"max=100"`
	Email   string `json:"email" validate:"omitempty,emailshape"`
}

// SubmitFeedback stores a rating.
func (s *QuizService) SubmitFeedback(ctx context.Context, in FeedbackInput) (domain.Feedback, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate(in); err != nil {
		return domain.Feedback{}, err
	}

	feedback := domain.Feedback{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateFeedback(ctx, feedback); err != nil {
		return domain.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return feedback, nil
}

// RecentFeedback returns the latest feedback entries, newest first.
func (s *QuizService) RecentFeedback(ctx context.Context) ([]domain.Feedback, error) {
	return s.store.ListFeedback(ctx, feedbackListLimit)
}
