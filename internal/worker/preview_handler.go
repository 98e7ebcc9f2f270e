package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"property-web/internal/config"
	"property-web/internal/models"
	"property-web/internal/repository"
	"property-web/internal/service"
	"property-web/internal/utils"
)

type PreviewTaskHandler struct {
	cfg           *config.Config
	importRepo    *repository.ImportRepository
	importService *service.ImportService
	log           *logrus.Logger
}

func NewPreviewTaskHandler(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) *PreviewTaskHandler {
	propertyRepo := repository.NewPropertyRepository(db)
	importRepo := repository.NewImportRepository(db)
	excelService := service.NewExcelService()
	log := utils.GetLogger()

	importService := service.NewImportService(db, propertyRepo, importRepo, excelService, redisClient, log)

	return &PreviewTaskHandler{
		cfg:           cfg,
		importRepo:    importRepo,
		importService: importService,
		log:           log,
	}
}

type PreviewTaskPayload struct {
	BatchID   int64  `json:"batch_id"`
	BatchCode string `json:"batch_code"`
}

func (h *PreviewTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload PreviewTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"batch_id":   payload.BatchID,
		"batch_code": payload.BatchCode,
	}).Info("Starting preview")

	batch, err := h.importRepo.GetBatchByID(payload.BatchID)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}

	// A batch that already moved past pending has been handled elsewhere,
	// do not run the phase a second time.
	if batch.Status != models.BatchPending {
		h.log.WithFields(logrus.Fields{
			"batch_code": payload.BatchCode,
			"status":     batch.Status,
		}).Info("Batch is no longer pending, skipping preview")
		return nil
	}

	if err := h.importService.Preview(ctx, payload.BatchID); err != nil {
		h.log.WithFields(logrus.Fields{
			"batch_code": payload.BatchCode,
			"error":      err.Error(),
		}).Error("Preview failed")
		// The batch has already been marked failed, so the task itself
		// succeeds and is not retried.
		return nil
	}

	h.log.WithField("batch_code", payload.BatchCode).Info("Preview completed")
	return nil
}
