package main

import (
	"context"
	"log"

	"ventas/condb"
	"ventas/config"
	"ventas/controllers"
	"ventas/middleware"
	"ventas/routes"
	"ventas/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	var st store.Store
	switch cfg.DBDriver {
	case "sqlite":
		st, err = store.OpenLocal(cfg.SQLitePath, logger)
	default:
		pool, perr := condb.Connect(ctx, cfg.DatabaseURL)
		if perr != nil {
			logger.Fatal("database connection failed", zap.Error(perr))
		}
		st, err = store.NewPostgres(ctx, pool, logger)
	}
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins, // comma separated
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(logger))

	h := controllers.New(st, logger)
	routes.RegisterRoutes(app, h)

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
	log.Fatal(app.Listen(":" + cfg.Port))
}
