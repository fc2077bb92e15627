package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/bundb"
	"live-quiz-service/internal/infra/bundb/migrations"
	pgloader "live-quiz-service/internal/infra/postgres"
	infraredis "live-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := bundb.OpenPostgres(pgURL)
	defer db.Close()
	if _, err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := bundb.NewStore(db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	loader := pgloader.NewQuizLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	service := app.NewQuizService(store, quizRepo)

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Title:   "Integration",
		AdminID: "admin-1",
		Questions: []app.QuestionInput{
			{QuestionText: "2 + 2?", Options: []app.OptionInput{{OptionText: "3"}, {OptionText: "4", IsCorrect: true}}},
			{QuestionText: "3 + 3?", Marks: 2, Options: []app.OptionInput{{OptionText: "6", IsCorrect: true}, {OptionText: "7"}}},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	// The pgx loader assembles the same document the bun store wrote.
	loaded, err := loader.LoadQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if loaded.Code != quiz.Code || len(loaded.Questions) != 2 || loaded.Questions[1].Marks != 2 || !loaded.Questions[0].Options[1].IsCorrect {
		t.Fatalf("loaded quiz differs: %+v", loaded)
	}
	if _, err := loader.LoadQuiz(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound from loader, got %v", err)
	}

	join := func(name, email string) domain.Participant {
		p, err := service.Join(ctx, app.JoinInput{
			QuizCode: strings.ToLower(quiz.Code), Name: name, Email: email,
			PhoneNumber: "9876543210", College: "C", Branch: "B", Year: "3",
		})
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		return p
	}
	alice := join("Alice", "alice@example.com")
	bob := join("Bob", "bob@example.com")

	again, err := service.Join(ctx, app.JoinInput{
		QuizCode: quiz.Code, Name: "Alice", Email: "ALICE@example.com",
		PhoneNumber: "9876543210", College: "C", Branch: "B", Year: "3",
	})
	if !errors.Is(err, domain.ErrAlreadyJoined) || again.ID != alice.ID {
		t.Fatalf("expected duplicate join to return alice, got %+v %v", again, err)
	}

	q1, q2 := quiz.Questions[0], quiz.Questions[1]
	submit := func(p domain.Participant, q domain.Question, optionID string) {
		if _, err := service.SubmitResponse(ctx, app.SubmitInput{ParticipantID: p.ID, QuestionID: q.ID, SelectedOptionID: optionID}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	submit(alice, q1, q1.Options[1].ID)
	submit(alice, q2, q2.Options[1].ID)
	submit(bob, q1, q1.Options[1].ID)
	submit(bob, q2, q2.Options[0].ID)

	result, err := service.Results(ctx, quiz.ID, alice.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if result.Score != 1 || result.Accuracy != 50 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected alice result: %+v", result)
	}

	board, err := service.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].ParticipantID != bob.ID || board[0].Score != 3 {
		t.Fatalf("expected bob leading with 3, got %+v", board)
	}

	if n, err := redisClient.Exists(ctx, "quiz:"+quiz.ID+":doc").Result(); err != nil || n != 1 {
		t.Fatalf("expected quiz document cached in redis, got %d %v", n, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
