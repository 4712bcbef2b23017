package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sensor-collector/core/config"
	"sensor-collector/core/dispatch"
	"sensor-collector/core/loader"
	"sensor-collector/core/logger"
	"sensor-collector/core/metrics"
	"sensor-collector/core/middleware/auth"
	"sensor-collector/core/middleware/rayid"
	"sensor-collector/core/storage"
	"sensor-collector/feature/nodes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "sensor-collector/docs/swagger"
)

// @title Sensor Node Collector API
// @version 1.0
// @description API for submitting sensor nodes and their photos.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collector HTTP server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Metrics
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)

		// 4. Initialize Storage
		provider, err := storage.ParseProvider(cfg.Storage.Provider)
		if err != nil {
			logg.Fatal("Invalid storage provider", zap.Error(err))
		}
		client, err := storage.NewClient(cfg.Storage.Provider, cfg.Storage.Options(), logg)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		client = storage.Instrument(client, provider, m)
		logg.Info("Storage client ready",
			zap.String("provider", string(provider)),
			zap.String("bucket", cfg.Storage.Bucket),
		)

		dispatcher := dispatch.New(logg, dispatch.WithMetrics(m))

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 6. Register Features
		mgr := loader.NewManager(logg)
		mgr.Register(nodes.NewFeature(client, dispatcher, cfg.Storage.Bucket, logg))

		// Middleware Registration
		app.Use(recover.New())
		// RayID next so every later log line can carry it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public routes
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		// Submitted writes are not cancelled; let them finish.
		logg.Info("Waiting for in-flight storage operations")
		dispatcher.Wait()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
