package main

import (
	"context"
	"net/http"

	"geoform/internal/atlas"
	"geoform/internal/config"
	"geoform/internal/handler"
	"geoform/internal/logger"
	"geoform/internal/metrics"
	"geoform/internal/repository"
	"geoform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(config.LogLevel, config.LogFormat, nil)

	tables := atlas.DefaultTables()
	if config.GeoTables != "" {
		tables, err = atlas.LoadTables(config.GeoTables)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot load geo tables")
		}
	}

	// Report source: Postgres when configured, the snapshot file otherwise
	var source service.ReportSource
	if config.DBSource != "" {
		conn, err := pgxpool.New(context.Background(), config.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		source = repository.NewRepository(conn)
	} else {
		log.Info().Str("path", config.GeoSnapshot).Msg("reading reports from snapshot")
		source = repository.NewSnapshot(config.GeoSnapshot)
	}

	// Initialize layers
	taxonomyService := service.NewTaxonomyService(source, tables)
	formService := service.NewFormService(nil, taxonomyService, service.FormOptions{
		EntryAnchor:    config.EntryAnchor,
		ContinueAnchor: config.ContinueAnchor,
		Strict:         config.StrictValidation,
	})

	atlasHandler := handler.NewAtlasHandler(taxonomyService)
	normalizeHandler := handler.NewNormalizeHandler(taxonomyService)
	questionsHandler := handler.NewQuestionsHandler(formService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/atlas", atlasHandler.Atlas)
	r.GET("/normalize", normalizeHandler.Normalize)
	r.GET("/questions", questionsHandler.Questions)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
