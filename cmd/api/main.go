package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helix-api/internal/config"
	"helix-api/internal/db"
	"helix-api/internal/email"
	apihttp "helix-api/internal/http"
	"helix-api/internal/repository"
	"helix-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.MigrateOnStart {
		res, err := db.Migrate(cfg.DatabaseURL, -1)
		if err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Uint("from", res.From), zap.Uint("to", res.To), zap.Bool("changed", res.Changed))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	traitRepo := repository.NewPgTraitRepository(pool)
	simulationRepo := repository.NewPgSimulationRepository(pool)
	geneticRepo := repository.NewPgGeneticDataRepository(pool)
	partnerRepo := repository.NewPgPartnerRepository(pool)

	emailSender := email.NewDisabledSender(logger, "email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		sessions    service.SessionStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRequestWindow, cfg.OTPRequestBudget)
			sessions = service.NewRedisSessionStore(redisClient)
		}
		cancel()
	}
	if otpLimiter == nil {
		otpLimiter = service.NewOTPRateLimiter(cfg.OTPRequestWindow, cfg.OTPRequestBudget)
	}
	if sessions == nil {
		logger.Warn("redis unavailable, sessions kept in memory")
	}
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL(), sessions)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, profileRepo, emailSender, otpLimiter)
	profileSvc := service.NewProfileService(profileRepo)
	simulationSvc := service.NewSimulationService(logger, simulationRepo, partnerRepo, cfg.SimulationDelay)
	traitSvc := service.NewTraitService(logger, traitRepo)
	geneticSvc := service.NewGeneticProfileService(geneticRepo)
	partnerSvc := service.NewPartnerService(partnerRepo)
	dashboardSvc := service.NewDashboardService(logger, simulationRepo, geneticRepo)

	router := apihttp.NewRouter(logger, tokens, apihttp.Handlers{
		User:       apihttp.NewUserHandler(logger, userSvc, profileSvc, tokens),
		Profile:    apihttp.NewProfileHandler(logger, profileSvc),
		Simulation: apihttp.NewSimulationHandler(logger, simulationSvc),
		Trait:      apihttp.NewTraitHandler(traitSvc),
		Genetic:    apihttp.NewGeneticProfileHandler(logger, geneticSvc),
		Partner:    apihttp.NewPartnerHandler(logger, partnerSvc),
		Dashboard:  apihttp.NewDashboardHandler(logger, dashboardSvc),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
