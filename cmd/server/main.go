package main

import (
	"log"

	"github.com/docuflow/statement-extraction-service/internal/config"
	"github.com/docuflow/statement-extraction-service/internal/handler"
	"github.com/docuflow/statement-extraction-service/internal/logger"
	"github.com/docuflow/statement-extraction-service/internal/openai"
	"github.com/docuflow/statement-extraction-service/internal/rasterize"
	"github.com/docuflow/statement-extraction-service/internal/server"
	"github.com/docuflow/statement-extraction-service/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)

	modelClient := openai.NewClient(openai.Config{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.OpenAIMaxTokens,
		Timeout:   cfg.OpenAITimeout,
	}, appLog)

	rasterizer := rasterize.NewPoppler(rasterize.Config{
		PdftoppmPath: cfg.PdftoppmPath,
		DPI:          cfg.RasterDPI,
	}, appLog)

	extractionService := service.NewExtractionService(rasterizer, modelClient, service.Config{
		AllowedExtensions: cfg.AllowedExtensions,
		MaxWorkers:        cfg.MaxWorkers,
		MaxImageDimension: cfg.MaxImageDimension,
		JPEGQuality:       cfg.JPEGQuality,
	}, appLog)

	extractHandler := handler.NewExtractHandler(extractionService, cfg.MaxUploadSize, appLog)
	healthHandler := handler.NewHealthHandler(modelClient)

	appServer := server.NewServer(cfg, extractHandler, healthHandler, appLog)
	if err := appServer.Start(); err != nil {
		appLog.Fatal().Err(err).Msg("server error")
	}
}
