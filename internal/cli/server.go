package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"mathsense-service/internal/app"
	"mathsense-service/internal/config"
	"mathsense-service/internal/generate"
	"mathsense-service/internal/infra/memory"
	pgstore "mathsense-service/internal/infra/postgres"
	redisinfra "mathsense-service/internal/infra/redis"
	transport "mathsense-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the MathSense server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var generator app.Generator
	if client := generate.NewClient(cfg.Generator.APIKey, cfg.Generator.BaseURL, cfg.Generator.Model); client != nil {
		generator = client
	} else {
		log.Printf("no generator API key configured, question generation disabled")
	}

	// Stores: Postgres in production, in-memory for a credential-free demo run.
	var (
		questionStore    app.QuestionStore
		practiceStore    transport.PracticeStore
		attemptStore     app.AttemptStore
		challengeStore   app.ChallengeStore
		challengeResults app.ChallengeResultStore
		userStore        app.UserStore
		leaderboardStore app.LeaderboardProvider
	)
	if pool != nil {
		questions := pgstore.NewQuestionStore(pool)
		challenges := pgstore.NewChallengeStore(pool)
		questionStore = questions
		practiceStore = questions
		attemptStore = pgstore.NewAttemptStore(pool)
		challengeStore = challenges
		challengeResults = challenges
		userStore = pgstore.NewUserStore(pool)
		leaderboardStore = pgstore.NewLeaderboardStore(pool)
	} else {
		log.Printf("postgres not configured, using in-memory stores")
		questions := memory.NewQuestionStore(app.FallbackQuestions())
		challenges := memory.NewChallengeStore()
		questionStore = questions
		practiceStore = questions
		attemptStore = memory.NewAttemptStore()
		challengeStore = challenges
		challengeResults = challenges
		userStore = memory.NewUserStore()
		leaderboardStore = memory.NewLeaderboardStore(nil)
	}

	leaderboardTTL := config.Duration(cfg.Leaderboard.TTL, time.Minute)
	if redisClient != nil {
		leaderboardStore = redisinfra.NewLeaderboardCache(redisClient, leaderboardStore, leaderboardTTL)
	}

	quizDuration := config.Duration(cfg.Quiz.Duration, 60*time.Second)
	challengeDuration := config.Duration(cfg.Challenge.Duration, 5*time.Minute)

	source := app.NewQuestionSource(generator, questionStore)
	reporter := app.NewAttemptReporter(attemptStore)
	challengeService := app.NewDailyChallengeService(challengeStore, generator, int(challengeDuration.Seconds()))
	leaderboardService := app.NewLeaderboardService(leaderboardStore)
	preferences := app.NewPreferences(userStore)

	wsHandler := transport.NewWSHandler(source, reporter, challengeService, challengeResults, app.SessionOptions{
		DurationSeconds: int(quizDuration.Seconds()),
		QuestionCount:   cfg.QuestionCount(),
	})
	apiHandler := transport.NewAPIHandler(practiceStore, leaderboardService, preferences, challengeService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	// Pre-create the day's challenge shortly after midnight so the
	// first visitor never waits on generation.
	var scheduler *cron.Cron
	if generator != nil {
		scheduler = cron.New()
		_, err := scheduler.AddFunc("5 0 * * *", func() {
			createCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := challengeService.Today(createCtx); err != nil {
				log.Printf("scheduled challenge creation failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting mathsense service on :%s", finalPort)
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
