package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/infra/disk"
	"live-quiz-service/internal/infra/memory"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	images *disk.ImageStore
}

func newTestServer(t *testing.T, maxUpload int64, staticDir string) *testServer {
	t.Helper()
	store := memory.NewStore()
	service := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute))
	images, err := disk.NewImageStore(t.TempDir(), maxUpload, nil)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}
	handler := NewHandler(service, images, "https://quiz.example.com")
	return &testServer{router: NewRouter(handler, RouterConfig{StaticDir: staticDir}), images: images}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type quizBody struct {
	Quiz struct {
		ID        string `json:"_id"`
		Code      string `json:"code"`
		Status    string `json:"status"`
		Questions []struct {
			ID        string `json:"_id"`
			Marks     int    `json:"marks"`
			TimeLimit int    `json:"time_limit"`
			Options   []struct {
				ID        string `json:"_id"`
				IsCorrect bool   `json:"is_correct"`
			} `json:"options"`
		} `json:"questions"`
	} `json:"quiz"`
	JoinURL string `json:"joinUrl"`
}

func createQuizRequest() map[string]any {
	return map[string]any{
		"title":   "General knowledge",
		"adminId": "admin-1",
		"questions": []map[string]any{
			{
				"question_text": "2 + 2?",
				"options": []map[string]any{
					{"option_text": "3", "is_correct": false},
					{"option_text": "4", "is_correct": true},
				},
			},
			{
				"question_text": "Capital of France?",
				"marks":         1,
				"time_limit":    20,
				"options": []map[string]any{
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Rome", "is_correct": false},
				},
			},
		},
	}
}

func joinRequest(code, email string) map[string]any {
	return map[string]any{
		"quizCode":    code,
		"name":        "Asha",
		"email":       email,
		"phoneNumber": "9876543210",
		"college":     "MIT",
		"branch":      "CSE",
		"year":        "3",
	}
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, disk.DefaultMaxBytes, "")

	rec := srv.do(t, http.MethodPost, "/api/quizzes/create", createQuizRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	created := decode[quizBody](t, rec)
	quiz := created.Quiz
	if len(quiz.Code) != 6 || quiz.Status != "active" {
		t.Fatalf("unexpected quiz header: %+v", quiz)
	}
	if created.JoinURL != "https://quiz.example.com/join/"+quiz.Code {
		t.Fatalf("unexpected join url %q", created.JoinURL)
	}
	if q := quiz.Questions[0]; q.Marks != 1 || q.TimeLimit != 30 {
		t.Fatalf("expected defaults applied, got marks=%d time=%d", q.Marks, q.TimeLimit)
	}

	rec = srv.do(t, http.MethodGet, "/api/quizzes/code/"+strings.ToLower(quiz.Code), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup by lowercase code: expected 200, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/participants/join", joinRequest(quiz.Code, "Asha@Example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	joined := decode[struct {
		Participant struct {
			ID     string `json:"_id"`
			Email  string `json:"email"`
			QuizID string `json:"quizId"`
		} `json:"participant"`
	}](t, rec)
	participantID := joined.Participant.ID
	if joined.Participant.Email != "asha@example.com" || joined.Participant.QuizID != quiz.ID {
		t.Fatalf("unexpected participant: %+v", joined.Participant)
	}

	rec = srv.do(t, http.MethodPost, "/api/participants/join", joinRequest(quiz.Code, "asha@example.com"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join: expected 409, got %d", rec.Code)
	}
	conflict := decode[map[string]string](t, rec)
	if conflict["participantId"] != participantID || !strings.Contains(conflict["message"], "already joined") {
		t.Fatalf("unexpected conflict body: %v", conflict)
	}

	q1, q2 := quiz.Questions[0], quiz.Questions[1]
	answers := []struct {
		questionID string
		optionID   string
		correct    bool
	}{
		{q1.ID, q1.Options[1].ID, true},
		{q2.ID, q2.Options[1].ID, false},
	}
	for _, a := range answers {
		rec = srv.do(t, http.MethodPost, "/api/responses/submit", map[string]any{
			"participantId":    participantID,
			"questionId":       a.questionID,
			"selectedOptionId": a.optionID,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("submit: expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		got := decode[struct {
			Response struct {
				ID        string `json:"id"`
				IsCorrect bool   `json:"isCorrect"`
			} `json:"response"`
		}](t, rec)
		if got.Response.ID == "" || got.Response.IsCorrect != a.correct {
			t.Fatalf("unexpected submit result: %+v", got.Response)
		}
	}

	rec = srv.do(t, http.MethodGet, "/api/results/"+quiz.ID+"/"+participantID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: expected 200, got %d", rec.Code)
	}
	result := decode[struct {
		Score          int               `json:"score"`
		TotalQuestions int               `json:"totalQuestions"`
		Accuracy       float64           `json:"accuracy"`
		Responses      []json.RawMessage `json:"responses"`
	}](t, rec)
	if result.Score != 1 || result.TotalQuestions != 2 || result.Accuracy != 50 || len(result.Responses) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	rec = srv.do(t, http.MethodGet, "/api/leaderboard/"+quiz.ID, nil)
	board := decode[struct {
		Leaderboard []struct {
			ParticipantID string  `json:"participantId"`
			Score         int     `json:"score"`
			Accuracy      float64 `json:"accuracy"`
		} `json:"leaderboard"`
	}](t, rec)
	if len(board.Leaderboard) != 1 || board.Leaderboard[0].ParticipantID != participantID || board.Leaderboard[0].Score != 1 {
		t.Fatalf("unexpected leaderboard: %+v", board.Leaderboard)
	}

	rec = srv.do(t, http.MethodGet, "/api/responses/participant/"+participantID, nil)
	responses := decode[struct {
		Responses []struct {
			QuestionText string `json:"questionText"`
		} `json:"responses"`
	}](t, rec)
	if len(responses.Responses) != 2 || responses.Responses[0].QuestionText != "2 + 2?" {
		t.Fatalf("unexpected responses: %+v", responses.Responses)
	}
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t, disk.DefaultMaxBytes, "")

	cases := []struct {
		name    string
		method  string
		target  string
		body    any
		status  int
		message string
	}{
		{"missing title", http.MethodPost, "/api/quizzes/create", map[string]any{"adminId": "a", "questions": []any{}}, http.StatusBadRequest, "title is required"},
		{"unknown code", http.MethodGet, "/api/quizzes/code/ZZZZZZ", nil, http.StatusNotFound, "Quiz not found"},
		{"unknown quiz id", http.MethodGet, "/api/quizzes/id/nope", nil, http.StatusNotFound, "Quiz not found"},
		{"unknown participant", http.MethodGet, "/api/participants/nope", nil, http.StatusNotFound, "Participant not found"},
		{"join unknown quiz", http.MethodPost, "/api/participants/join", joinRequest("ZZZZZZ", "a@b.co"), http.StatusNotFound, "Quiz not found"},
		{"join bad email", http.MethodPost, "/api/participants/join", joinRequest("ZZZZZZ", "not-an-email"), http.StatusBadRequest, "Invalid email format"},
		{"submit unknown question", http.MethodPost, "/api/responses/submit", map[string]any{"participantId": "p", "questionId": "q"}, http.StatusNotFound, "Question not found"},
		{"feedback without rating", http.MethodPost, "/api/feedback", map[string]any{"comment": "nice"}, http.StatusBadRequest, "rating is required"},
		{"login without email", http.MethodPost, "/api/auth/login", map[string]any{"name": "x"}, http.StatusBadRequest, "email is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, tc.method, tc.target, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := decode[map[string]any](t, rec)["message"]; got != tc.message {
				t.Fatalf("expected message %q, got %v", tc.message, got)
			}
		})
	}
}

func TestLoginAndFeedback(t *testing.T) {
	srv := newTestServer(t, disk.DefaultMaxBytes, "")

	rec := srv.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "Jo@Example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	user := decode[struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
			Role  string `json:"role"`
		} `json:"user"`
	}](t, rec).User
	if user.Email != "jo@example.com" || user.Name != "jo" || user.Role != "user" {
		t.Fatalf("unexpected user: %+v", user)
	}

	rec = srv.do(t, http.MethodPost, "/api/feedback", map[string]any{"rating": 5, "comment": "great"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("feedback: expected 201, got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodGet, "/api/feedback", nil)
	list := decode[struct {
		Feedback []struct {
			Rating int `json:"rating"`
		} `json:"feedback"`
	}](t, rec)
	if len(list.Feedback) != 1 || list.Feedback[0].Rating != 5 {
		t.Fatalf("unexpected feedback list: %+v", list.Feedback)
	}
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	srv := newTestServer(t, 64, "")

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, uploadRequest(t, "cat.png", "image/png", []byte("png-bytes")))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	imageURL := decode[map[string]string](t, rec)["imageUrl"]
	if !strings.HasPrefix(imageURL, "/uploads/question-") || !strings.HasSuffix(imageURL, ".png") {
		t.Fatalf("unexpected image url %q", imageURL)
	}

	rec = srv.do(t, http.MethodGet, imageURL, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("serve upload: got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != uploadsCacheControl {
		t.Fatalf("expected long-lived cache header, got %q", rec.Header().Get("Cache-Control"))
	}

	rejected := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		message     string
	}{
		{"executable", "tool.exe", "application/octet-stream", []byte("MZ"), "Only image files are allowed"},
		{"renamed with wrong mime", "tool.png", "application/x-msdownload", []byte("MZ"), "Only image files are allowed"},
		{"too large", "big.png", "image/png", bytes.Repeat([]byte("x"), 65), "File too large"},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, uploadRequest(t, tc.filename, tc.contentType, tc.data))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := decode[map[string]string](t, rec)["message"]; got != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, got)
			}
		})
	}

	rec = srv.do(t, http.MethodGet, "/api/uploads/list", nil)
	listing := decode[struct {
		Files []string `json:"files"`
		Count int      `json:"count"`
	}](t, rec)
	if listing.Count != 1 || len(listing.Files) != 1 || "/uploads/"+listing.Files[0] != imageURL {
		t.Fatalf("unexpected listing: %+v", listing)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	srv := newTestServer(t, disk.DefaultMaxBytes, "")
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("note", "no image here")
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["message"]; got != "No file uploaded" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestClientFallback(t *testing.T) {
	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	srv := newTestServer(t, disk.DefaultMaxBytes, staticDir)

	rec := srv.do(t, http.MethodGet, "/join/ABC123", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "app") {
		t.Fatalf("expected index.html for client route, got %d %q", rec.Code, rec.Body.String())
	}
	rec = srv.do(t, http.MethodGet, "/app.js", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Fatalf("expected asset, got %d %q", rec.Code, rec.Body.String())
	}
	rec = srv.do(t, http.MethodGet, "/api/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown api route, got %d", rec.Code)
	}

	bare := newTestServer(t, disk.DefaultMaxBytes, "")
	rec = bare.do(t, http.MethodGet, "/results", nil)
	if rec.Code != http.StatusNotFound || rec.Body.String() != buildMissingMessage {
		t.Fatalf("expected build-missing 404, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, disk.DefaultMaxBytes, "")
	rec := srv.do(t, http.MethodGet, "/health", nil)
	body := decode[map[string]string](t, rec)
	if rec.Code != http.StatusOK || body["status"] != "OK" || body["timestamp"] == "" {
		t.Fatalf("unexpected health response: %d %v", rec.Code, body)
	}
}
