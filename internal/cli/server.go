package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizlink-service/internal/app"
	"quizlink-service/internal/config"
	"quizlink-service/internal/domain"
	"quizlink-service/internal/infra/memory"
	pgstore "quizlink-service/internal/infra/postgres"
	redisstore "quizlink-service/internal/infra/redis"
	transport "quizlink-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	progressTTL := config.TTLDuration(cfg.Session.ProgressTTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var ledger app.AttemptLedger = memory.NewAttemptLedger()
	if pool != nil {
		ledger = pgstore.NewAttemptLedger(pool)
	}

	var progress app.ProgressStore = memory.NewProgressStore()
	if redisClient != nil {
		progress = redisstore.NewProgressStore(redisClient, progressTTL)
	}

	service := app.NewSubmitService(quizRepo, ledger)
	registry := memory.NewSessionRegistry()
	saveEvery := int(config.TTLDuration(cfg.Session.AutoSave, 15*time.Second) / time.Second)

	sessionHandler := transport.NewSessionHandler(service, quizRepo, registry, progress, saveEvery)
	submitHandler := transport.NewSubmitHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", sessionHandler.ServeWS)
	mux.HandleFunc("/api/submissions", submitHandler.Submit)
	mux.HandleFunc("/api/attempts", submitHandler.ListAttempts)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizlink service on :%s", finalPort)
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
	err = server.Shutdown(shutdownCtx)

	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		if closeErr := redisClient.Close(); closeErr != nil {
			log.Printf("closing redis client: %v", closeErr)
		}
	}
	return err
}

// sampleQuizzes seeds a demo quiz for running without Postgres; production
// loads quizzes from the quizzes table instead.
func sampleQuizzes() map[string]domain.Quiz {
	quiz := domain.Quiz{
		ID:          "quiz-1",
		Title:       "Capitals warm-up",
		LinkToken:   "demo-token",
		IsPublished: true,
		Questions: []domain.Question{
			{
				ID:            "q1",
				Order:         1,
				Text:          "What is the capital of France?",
				Type:          domain.QuestionSingleChoice,
				Options:       []string{"Paris", "London", "Berlin"},
				CorrectAnswer: "Paris",
			},
			{
				ID:            "q2",
				Order:         2,
				Text:          "Select the EU member states",
				Type:          domain.QuestionMultiSelect,
				Options:       []string{"France", "Norway", "Spain"},
				CorrectAnswer: "France;Spain",
			},
		},
		PassingScore:     1,
		QuestionsPerPage: 5,
		TimeLimitSec:     300,
	}
	if err := quiz.Validate(); err != nil {
		log.Fatalf("sample quiz invalid: %v", err)
	}
	return map[string]domain.Quiz{quiz.LinkToken: quiz}
}
