// Command api runs the RBAC HTTP service.
//
// @title                       RBAC API
// @version                     1.0
// @description                 Authentication, role-based authorization and audit logging.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/keystone-labs/rbac-core/docs"
	"github.com/keystone-labs/rbac-core/internal/api"
	"github.com/keystone-labs/rbac-core/internal/api/handler"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
	"github.com/keystone-labs/rbac-core/internal/core/service"
	mongodb "github.com/keystone-labs/rbac-core/internal/infrastructure/db/mongo"
	redisdb "github.com/keystone-labs/rbac-core/internal/infrastructure/db/redis"
	"github.com/keystone-labs/rbac-core/internal/infrastructure/mail"
	"github.com/keystone-labs/rbac-core/internal/infrastructure/queue"
	"github.com/keystone-labs/rbac-core/internal/infrastructure/storage"
	"github.com/keystone-labs/rbac-core/internal/pkg/config"
	"github.com/keystone-labs/rbac-core/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		zerolog.New(os.Stderr).With().Timestamp().Logger().
			Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "rbac-api",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not read .env")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	sessions := mongodb.NewSessionRepository(db)
	codes := mongodb.NewResetCodeRepository(db)
	audit := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, roles, sessions, codes, audit); err != nil {
		return err
	}

	redisCfg := redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	rdb, err := redisdb.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	cache := redisdb.NewPermissionCache(rdb, cfg.PermissionCacheTTL)

	images, err := storage.NewImageStore(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	}, logger.Component("storage"))
	if err != nil {
		return err
	}
	if err := images.EnsureBucket(ctx); err != nil {
		return err
	}

	// --- Mail ---
	smtpSender := mail.NewSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, logger.Component("mail"))

	var (
		mailer ports.Mailer = smtpSender
		worker *queue.Worker
	)
	if cfg.Mail.Async {
		redisOpt := asynq.RedisClientOpt{Addr: redisCfg.Addr, Password: redisCfg.Password, DB: redisCfg.DB}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		mailer = queue.NewMailQueue(client, logger.Component("queue"))
		worker = queue.NewWorker(redisOpt, 0, smtpSender, logger.Component("worker"))
	}

	// --- Services ---
	roleService := service.NewRoleService(roles, users, cache, audit, logger.Component("roles"))
	seeded, err := roleService.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if len(seeded) > 0 {
		log.Info().Strs("roles", seeded).Msg("seeded default roles")
	}

	authService := service.NewAuthService(users, roles, sessions, codes, mailer, audit, service.AuthConfig{
		Secret:       cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		ResetCodeTTL: cfg.ResetCodeTTL,
	}, logger.Component("auth"))

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Users:         service.NewUserService(users, roles, sessions, codes, images, audit, logger.Component("users")),
		Roles:         roleService,
		Audit:         service.NewAuditService(audit, logger.Component("audit")),
		Authenticator: service.NewAuthenticator(sessions, cfg.JWTSecret, logger.Component("authn")),
		Authorizer:    service.NewAuthorizer(users, roles, cache, audit, logger.Component("authz")),
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"minio":   images.Ping,
		},
		Log:                logger.Component("http"),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Production:         cfg.IsProduction(),
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return e.Shutdown(sctx)
	})
	if worker != nil {
		g.Go(func() error { return worker.Run(gctx) })
	}

	return g.Wait()
}
