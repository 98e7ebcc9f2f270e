package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"property-web/internal/config"
	"property-web/internal/handler"
	"property-web/internal/repository"
	"property-web/internal/service"
	"property-web/internal/utils"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	propertyRepo := repository.NewPropertyRepository(db)
	importRepo := repository.NewImportRepository(db)

	// Initialize services
	excelService := service.NewExcelService()
	importService := service.NewImportService(db, propertyRepo, importRepo, excelService, redis, utils.GetLogger())

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	importHandler := handler.NewImportHandler(importRepo, importService, excelService, asynqClient, cfg)
	propertyHandler := handler.NewPropertyHandler(propertyRepo)

	// Import routes
	imports := router.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Get("/", importHandler.GetBatches)
	imports.Get("/template", importHandler.DownloadTemplate)
	imports.Get("/:id", importHandler.GetBatch)
	imports.Get("/:id/rows", importHandler.GetBatchRows)
	imports.Post("/:id/commit", importHandler.CommitBatch)
	imports.Get("/:id/progress", importHandler.GetProgress)
	imports.Get("/:id/error-report", importHandler.DownloadErrorReport)

	// Property routes
	properties := router.Group("/properties")
	properties.Get("/", propertyHandler.GetProperties)
	properties.Get("/:id", propertyHandler.GetProperty)
	properties.Get("/:id/units", propertyHandler.GetPropertyUnits)
}
