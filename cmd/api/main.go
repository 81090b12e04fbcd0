// @title                      Bookly API
// @version                    1.0
// @description                Book catalog with reviews and JWT session authentication.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bookly/bookly-api/internal/api"
	"github.com/bookly/bookly-api/internal/core/password"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/core/service"
	"github.com/bookly/bookly-api/internal/core/token"
	mongostore "github.com/bookly/bookly-api/internal/infrastructure/db/mongo"
	"github.com/bookly/bookly-api/internal/infrastructure/db/postgres"
	redisstore "github.com/bookly/bookly-api/internal/infrastructure/db/redis"
	"github.com/bookly/bookly-api/internal/infrastructure/http/handlers"
	"github.com/bookly/bookly-api/internal/infrastructure/mail"
	"github.com/bookly/bookly-api/internal/infrastructure/queue"
	"github.com/bookly/bookly-api/internal/pkg/config"
	"github.com/bookly/bookly-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "bookly-api",
		Env:     cfg.Env,
	})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	db, err := postgres.Open(ctx, postgres.Config{
		DSN:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	blocklist := redisstore.NewBlocklist(rdb)

	checks := map[string]handlers.Check{
		"postgres": sqlDB.PingContext,
		"redis":    handlers.PingCheck(blocklist),
	}

	var activity ports.ActivityRecorder
	if cfg.Mongo.URI != "" {
		store, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}()

		repo := mongostore.NewActivityRepository(store.Database())
		if err := repo.EnsureIndexes(ctx, cfg.Mongo.ActivityRetention); err != nil {
			return err
		}
		activity = repo
		checks["mongo"] = handlers.PingCheck(store)
	} else {
		log.Info().Msg("MONGO_URI not set, auth activity trail disabled")
	}

	// --- Tokens and passwords ---
	sessionCodec, err := token.NewSessionCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return err
	}
	actionCodec, err := token.NewActionCodec(cfg.Auth.JWTSecret, cfg.Auth.ActionTokenTTL)
	if err != nil {
		return err
	}
	hasher := password.NewHasher(cfg.Auth.BcryptCost)

	g, gctx := errgroup.WithContext(ctx)

	// --- Mail ---
	var mailer ports.Mailer
	if cfg.Mail.Server != "" {
		smtp, err := mail.NewSMTPMailer(mail.Config{
			Server:   cfg.Mail.Server,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			StartTLS: cfg.Mail.StartTLS,
			SSL:      cfg.Mail.SSL,
		})
		if err != nil {
			return err
		}
		mailer = smtp
	} else {
		log.Warn().Msg("MAIL_SERVER not set, outgoing mail is logged only")
		mailer = mail.NewLogMailer(logger.Component("mail"))
	}

	policy := queue.RetryPolicy{MaxAttempts: cfg.Mail.MaxAttempts, InitialBackoff: cfg.Mail.InitialBackoff}
	var mailQueue ports.MailQueue
	if len(cfg.Kafka.Brokers) > 0 {
		kcfg := queue.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic, GroupID: cfg.Kafka.GroupID}
		producer, err := queue.NewKafkaQueue(kcfg)
		if err != nil {
			return err
		}
		defer producer.Close()

		consumer, err := queue.NewKafkaConsumer(kcfg, mailer, policy, logger.Component("mail-consumer"))
		if err != nil {
			return err
		}
		defer consumer.Close()

		g.Go(func() error { return consumer.Run(gctx) })
		mailQueue = producer
	} else {
		dispatcher := queue.NewDispatcher(cfg.Mail.Workers, mailer, policy, logger.Component("mail-dispatcher"))
		dispatcher.Start(gctx)
		g.Go(func() error {
			dispatcher.Wait()
			return nil
		})
		mailQueue = dispatcher
	}

	// --- Services ---
	users := postgres.NewUserRepository(db)
	sessions := service.NewSessionService(users, hasher, sessionCodec, blocklist, activity, service.SessionConfig{
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
		RevocationTTL: cfg.Auth.RevocationTTL,
	}, logger.Component("sessions"))
	accounts := service.NewAccountService(users, hasher, actionCodec, mailQueue, activity, cfg.Domain, logger.Component("accounts"))
	books := service.NewBookService(postgres.NewBookRepository(db), logger.Component("books"))
	reviews := service.NewReviewService(postgres.NewReviewRepository(db), logger.Component("reviews"))

	e := api.NewRouter(api.Deps{
		Log:       logger.Component("http"),
		Sessions:  sessions,
		Accounts:  accounts,
		Books:     books,
		Reviews:   reviews,
		Codec:     sessionCodec,
		Blocklist: blocklist,
		Users:     users,
		Checks:    checks,
	})

	// --- Server ---
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down server")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
