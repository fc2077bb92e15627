package http

import (
	"errors"
	"log"
	"net/http"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/disk"

	"github.com/gin-gonic/gin"
)

const invalidBodyMessage = "Invalid request body"

// Handler exposes the quiz use cases as JSON endpoints.
type Handler struct {
	service      *app.QuizService
	images       *disk.ImageStore
	publicOrigin string
}

func NewHandler(service *app.QuizService, images *disk.ImageStore, publicOrigin string) *Handler {
	return &Handler{service: service, images: images, publicOrigin: publicOrigin}
}

func (h *Handler) Login(c *gin.Context) {
	var in app.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, invalidBodyMessage)
		return
	}
	user, err := h.service.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	}})
}

func (h *Handler) CreateQuiz(c *gin.Context) {
	var in app.CreateQuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, invalidBodyMessage)
		return
	}
	quiz, err := h.service.CreateQuiz(c.Request.Context(), in)
	if err != nil {
		if _, _, ok := classify(err); !ok {
			// Creation failures reach the admin verbatim.
			log.Printf("create quiz: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		writeError(c, "create quiz", err)
		return
	}
	body := gin.H{"quiz": quiz}
	if h.publicOrigin != "" {
		body["joinUrl"] = h.publicOrigin + "/join/" + quiz.Code
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) GetQuizByCode(c *gin.Context) {
	quiz, err := h.service.GetQuizByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, "get quiz by code", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *Handler) GetQuizByID(c *gin.Context) {
	quiz, err := h.service.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get quiz by id", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *Handler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.service.ListQuizzes(c.Request.Context())
	if err != nil {
		writeError(c, "list quizzes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

func (h *Handler) JoinQuiz(c *gin.Context) {
	var in app.JoinInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, invalidBodyMessage)
		return
	}
	participant, err := h.service.Join(c.Request.Context(), in)
	if errors.Is(err, domain.ErrAlreadyJoined) {
		body := gin.H{"message": sentence(domain.ErrAlreadyJoined.Error())}
		if participant.ID != "" {
			body["participantId"] = participant.ID
		}
		c.JSON(http.StatusConflict, body)
		return
	}
	if err != nil {
		writeError(c, "join quiz", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": gin.H{
		"_id":    participant.ID,
		"name":   participant.Name,
		"email":  participant.Email,
		"quizId": participant.QuizID,
	}})
}

func (h *Handler) GetParticipant(c *gin.Context) {
	participant, err := h.service.GetParticipant(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get participant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

func (h *Handler) SubmitResponse(c *gin.Context) {
	var in app.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, invalidBodyMessage)
		return
	}
	response, err := h.service.SubmitResponse(c.Request.Context(), in)
	if err != nil {
		writeError(c, "submit response", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": gin.H{
		"id":        response.ID,
		"isCorrect": response.IsCorrect,
	}})
}

func (h *Handler) ParticipantResponses(c *gin.Context) {
	responses, err := h.service.ParticipantResponses(c.Request.Context(), c.Param("participantId"))
	if err != nil {
		writeError(c, "get responses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

func (h *Handler) Results(c *gin.Context) {
	result, err := h.service.Results(c.Request.Context(), c.Param("quizId"), c.Param("participantId"))
	if err != nil {
		writeError(c, "get results", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		writeError(c, "get leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var in app.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, invalidBodyMessage)
		return
	}
	if _, err := h.service.SubmitFeedback(c.Request.Context(), in); err != nil {
		writeError(c, "submit feedback", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Feedback submitted successfully"})
}

func (h *Handler) ListFeedback(c *gin.Context) {
	feedback, err := h.service.RecentFeedback(c.Request.Context())
	if err != nil {
		writeError(c, "list feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
