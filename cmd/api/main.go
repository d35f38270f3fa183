package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/oserockets-max/soken-quiz/internal/cache"
	"github.com/oserockets-max/soken-quiz/internal/config"
	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/middleware"
	"github.com/oserockets-max/soken-quiz/internal/quiz"
	"github.com/oserockets-max/soken-quiz/internal/store"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
	"github.com/oserockets-max/soken-quiz/internal/ws"
)

func main() {
	cfg := config.Load()

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Msg("booting soken-quiz")

	ctx := context.Background()

	creds, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		log.Fatalf("read service account file: %v", err)
	}

	drv, err := store.NewDrive(ctx, creds, cfg.DriveFolderID)
	if err != nil {
		log.Fatalf("drive: %v", err)
	}

	client, err := gen.NewClient(ctx, cfg.GeminiKey, cfg.GeminiRPS, cfg.GeminiBurst)
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer client.Close()

	model := cfg.GeminiModel
	if model == "" {
		model = client.PickModel(ctx)
	}

	rdb := cache.MustConnect(cfg.RedisAddr, cfg.RedisDB)
	handles := cache.NewHandles(rdb, cfg.HandleCacheTTL)

	svc := quiz.NewService(drv, client, handles, cfg.FilePollInterval, cfg.FilePollMax)
	qh := quiz.NewHandler(cfg, svc, client, model)

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.MaxBodyLimit * 1024 * 1024,
	})

	app.Use(middleware.RateLimiter())
	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.RequestLog())
	app.Use(middleware.SecureHeaders())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api/v1")
	api.Get("/documents", qh.ListDocuments)
	api.Post("/documents", middleware.FileUploadValidator(cfg), qh.UploadDocument)

	api.Post("/sessions", qh.CreateSession)
	api.Get("/sessions/:id", qh.GetSession)
	api.Delete("/sessions/:id", qh.DeleteSession)
	api.Post("/sessions/:id/document", qh.SelectDocument)
	api.Post("/sessions/:id/mode", qh.SetMode)
	api.Get("/sessions/:id/question", qh.Question)
	api.Post("/sessions/:id/answer", qh.Answer)
	api.Post("/sessions/:id/next", qh.NextQuestion)
	api.Post("/sessions/:id/retry", qh.RetryQuestion)

	app.Get("/ws", middleware.WSUpgradeMiddleware(), websocket.New(ws.HandleWS))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
