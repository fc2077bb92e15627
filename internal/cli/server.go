package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/bundb"
	"live-quiz-service/internal/infra/disk"
	"live-quiz-service/internal/infra/memory"
	pgloader "live-quiz-service/internal/infra/postgres"
	rediscache "live-quiz-service/internal/infra/redis"
	transport "live-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends is the persistence selected by config, plus what to close on shutdown.
type backends struct {
	store   app.Store
	loader  memory.QuizLoader
	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	db, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.Printf("no database configured, using in-memory store")
		store := memory.NewStore()
		b.store, b.loader = store, store
		return b, nil
	}
	b.closers = append(b.closers, func() { _ = db.Close() })

	if err := migrate(ctx, db); err != nil {
		b.close()
		return nil, err
	}
	store := bundb.NewStore(db)
	b.store, b.loader = store, store

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.loader = pgloader.NewQuizLoader(pool)
		log.Printf("using postgres store")
	} else {
		log.Printf("using sqlite store at %s", cfg.SQLite.Path)
	}
	return b, nil
}

func newQuizCache(ctx context.Context, cfg config.Config, loader memory.QuizLoader) (app.QuizRepository, func()) {
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		return memory.NewQuizRepository(loader, quizTTL), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// Reads fall through to the loader while redis is down.
		log.Printf("redis ping failed: %v", err)
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, quizTTL)
	return rediscache.NewQuizRepository(client, loader, redisTTL), func() { _ = client.Close() }
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	quizRepo, closeCache := newQuizCache(ctx, cfg, b.loader)
	defer closeCache()

	images, err := disk.NewImageStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, cfg.Uploads.AllowedTypes)
	if err != nil {
		return err
	}

	service := app.NewQuizService(b.store, quizRepo)
	handler := transport.NewHandler(service, images, cfg.Server.PublicOrigin)
	router := transport.NewRouter(handler, transport.RouterConfig{StaticDir: cfg.Server.StaticDir})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
