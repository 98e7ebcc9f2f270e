package worker

import (
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"property-web/internal/config"
	"property-web/internal/service"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) {
	previewHandler := NewPreviewTaskHandler(db, redisClient, cfg)

	mux.HandleFunc(service.TaskImportPreview, previewHandler.Handle)
}
