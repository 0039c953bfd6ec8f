package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/meinhoongagan/findam/config"
	"github.com/meinhoongagan/findam/controllers"
	"github.com/meinhoongagan/findam/cron"
	"github.com/meinhoongagan/findam/db"
	"github.com/meinhoongagan/findam/logger"
	"github.com/meinhoongagan/findam/middleware"
	findamredis "github.com/meinhoongagan/findam/redis"
	"github.com/meinhoongagan/findam/routes"
	"github.com/meinhoongagan/findam/services"
	"github.com/meinhoongagan/findam/store"
	"github.com/meinhoongagan/findam/utils"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var revocations services.RevocationList
	if cfg.RedisAddr != "" {
		client, err := findamredis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		revocations = findamredis.NewRevocations(client)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logged-out tokens are remembered in memory only")
	}

	accounts := store.NewGormAccountStore(db.DB)
	providers := store.NewGormProviderStore(db.DB)

	hasher := services.NewBcryptHasher(bcrypt.DefaultCost)
	sessions := services.NewJWTSessions(cfg.JWTSecret, cfg.SessionTTL, revocations)
	mailer := utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom, cfg.City)
	reset := services.NewPasswordReset(accounts, hasher, mailer, cfg.AppURL)

	var uploader controllers.Uploader
	if cfg.CloudinaryCloudName != "" {
		u, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadPreset)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure cloudinary")
		}
		uploader = u
	} else {
		log.Warn().Msg("CLOUDINARY_CLOUD_NAME not set, image uploads are disabled")
	}

	if cfg.ResetSweepSchedule != "" {
		sweep, err := cron.StartResetTokenSweep(cfg.ResetSweepSchedule, reset)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to schedule reset token sweep")
		}
		defer sweep.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "findam",
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		// room for a full-size image plus multipart framing
		BodyLimit: utils.MaxUploadSize + 1<<20,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(middleware.RequestLogger())

	routes.Setup(app, routes.Handlers{
		Sessions:  sessions,
		Auth:      controllers.NewAuthController(services.NewAuthService(accounts, hasher, sessions), strings.HasPrefix(cfg.AppURL, "https://")),
		Password:  controllers.NewPasswordController(reset),
		Providers: controllers.NewProviderController(services.NewProviderQuery(providers, cfg.City)),
		Register:  controllers.NewRegisterController(services.NewRegistration(providers, cfg.City)),
		Upload:    controllers.NewUploadController(uploader),

		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRateLimit),
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("city", cfg.City).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
