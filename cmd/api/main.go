package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/placementcell/recruit-portal/docs"
	"github.com/placementcell/recruit-portal/internal/api"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/core/service"
	"github.com/placementcell/recruit-portal/internal/infrastructure/config"
	mongodb "github.com/placementcell/recruit-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/placementcell/recruit-portal/internal/infrastructure/db/redis"
	infrahttp "github.com/placementcell/recruit-portal/internal/infrastructure/http"
	"github.com/placementcell/recruit-portal/internal/infrastructure/http/handlers"
	"github.com/placementcell/recruit-portal/internal/infrastructure/queue"
	"github.com/placementcell/recruit-portal/internal/infrastructure/ratelimit"
	"github.com/placementcell/recruit-portal/internal/infrastructure/storage/local"
	"github.com/placementcell/recruit-portal/internal/infrastructure/storage/s3store"
	"github.com/placementcell/recruit-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Recruitment Portal API
// @version                     1.0
// @description                 Accounts, student and recruiter profiles, resumes and the admin audit log.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load config
	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}

	// 2. Setup logger
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "recruit-portal",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exiting")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// 3. Setup database
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	checks := []handlers.Check{handlers.MongoCheck(db)}

	// 4. Login limiter: Redis when reachable, otherwise in process
	var limiter ports.AttemptLimiter = ratelimit.NewMemory(cfg.Login.MaxAttempts, cfg.Login.Window)
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory login limiter")
		} else {
			defer rdb.Close()
			limiter = redisdb.NewAttemptLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
			checks = append(checks, handlers.RedisCheck(rdb))
		}
	}

	// 5. Resume storage
	store, err := newFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	// 6. Audit dispatcher
	writers := []queue.NamedWriter{{Name: "mongo", Writer: mongodb.NewAuditRepository(db)}}
	if cfg.Audit.AMQPURL != "" {
		publisher, err := queue.DialAMQP(cfg.Audit.AMQPURL, cfg.Audit.AMQPQueue)
		if err != nil {
			log.Warn().Err(err).Msg("amqp unavailable, audit events go to mongo only")
		} else {
			defer publisher.Close()
			writers = append(writers, queue.NamedWriter{Name: "amqp", Writer: publisher})
		}
	}
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, logger.For("audit"), writers...)
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	// 7. Services
	accounts := mongodb.NewAccountRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	auditLog := mongodb.NewAuditRepository(db)

	authService := service.NewAuthService(accounts, limiter, dispatcher, service.AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		CountryCode: cfg.PhoneCountryCode,
	}, logger.For("auth"))
	resumes := service.NewResumeManager(store, cfg.Resume.MaxBytes, logger.For("resume"))
	profileService := service.NewProfileService(profiles, resumes, dispatcher, cfg.PhoneCountryCode, logger.For("profile"))
	auditService := service.NewAuditLogService(auditLog)

	// 8. Router
	e := api.NewRouter(api.Options{
		Auth:           authService,
		Profiles:       profileService,
		AuditLog:       auditService,
		JWTSecret:      cfg.JWTSecret,
		MaxResumeBytes: resumes.MaxBytes(),
		Logger:         logger.For("http"),
	})
	infrahttp.RegisterOps(e, checks...)

	// 9. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting recruit portal")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newFileStore(ctx context.Context, cfg *config.Config) (ports.FileStore, error) {
	if cfg.Resume.Backend == config.ResumeBackendS3 {
		return s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
		})
	}
	return local.New(cfg.Resume.Dir)
}
