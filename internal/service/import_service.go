package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"property-web/internal/models"
	"property-web/internal/repository"
)

// TaskImportPreview is the asynq task type for the background preview phase.
const TaskImportPreview = "import:preview"

// ErrBatchNotPreviewed is returned when commit is invoked on a batch that
// has not finished the preview phase. Nothing is changed in that case.
var ErrBatchNotPreviewed = errors.New("batch is not in previewed status")

// ImportService drives the two pipeline phases over one batch: Preview
// (ingest, stage, validate) and Commit. Each phase runs under a single
// transaction and rolls back fully on a fatal error, marking the batch
// failed.
//
// The canonical store is not locked between the two phases, so another
// batch committing in between can invalidate uniqueness assumptions made
// here during validation.
type ImportService struct {
	db           *sqlx.DB
	propertyRepo *repository.PropertyRepository
	importRepo   *repository.ImportRepository
	excelService *ExcelService
	rowBuilder   *RowBuilder
	redis        *redis.Client
	log          *logrus.Logger
}

func NewImportService(
	db *sqlx.DB,
	propertyRepo *repository.PropertyRepository,
	importRepo *repository.ImportRepository,
	excelService *ExcelService,
	redisClient *redis.Client,
	log *logrus.Logger,
) *ImportService {
	return &ImportService{
		db:           db,
		propertyRepo: propertyRepo,
		importRepo:   importRepo,
		excelService: excelService,
		rowBuilder:   NewRowBuilder(),
		redis:        redisClient,
		log:          log,
	}
}

// Preview runs the ingest+validate phase: the uploaded file is read, rows
// are staged with their dedup applied, every staged row is validated to a
// terminal pre-commit status, and the batch moves to previewed with its
// summary document. A fatal error rolls the phase back and marks the
// batch failed.
func (s *ImportService) Preview(ctx context.Context, batchID int64) error {
	batch, err := s.importRepo.GetBatchByID(batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}

	if batch.Status != models.BatchPending {
		s.log.WithFields(logrus.Fields{
			"batch":  batch.BatchCode,
			"status": batch.Status,
		}).Info("batch is not pending, skipping preview")
		return nil
	}

	table, err := s.excelService.ParseImportFile(batch.FilePath)
	if err != nil {
		return s.failBatch(batch, err)
	}
	s.setProgress(ctx, batch.ID, 25)

	raw, err := s.excelService.IngestRows(table)
	if err != nil {
		// Missing headers abort the whole batch.
		return s.failBatch(batch, err)
	}

	rows := s.rowBuilder.BuildRows(batch.ID, raw)
	s.setProgress(ctx, batch.ID, 50)

	tx, err := s.db.Beginx()
	if err != nil {
		return s.failBatch(batch, fmt.Errorf("failed to begin transaction: %w", err))
	}

	validator := NewConflictValidator(s.propertyRepo.WithTx(tx))
	if err := validator.Validate(rows); err != nil {
		tx.Rollback()
		return s.failBatch(batch, err)
	}
	s.setProgress(ctx, batch.ID, 75)

	importRepo := s.importRepo.WithTx(tx)
	if err := importRepo.BulkInsertRows(rows); err != nil {
		tx.Rollback()
		return s.failBatch(batch, fmt.Errorf("failed to stage rows: %w", err))
	}

	summary := BuildBatchSummary(rows)
	batch.Status = models.BatchPreviewed
	batch.Summary = &summary
	batch.Errors = nil
	if err := importRepo.UpdateBatch(batch); err != nil {
		tx.Rollback()
		return s.failBatch(batch, fmt.Errorf("failed to update batch: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return s.failBatch(batch, fmt.Errorf("failed to commit preview: %w", err))
	}
	s.setProgress(ctx, batch.ID, 100)

	s.log.WithFields(logrus.Fields{
		"batch":    batch.BatchCode,
		"rows":     summary.TotalRows,
		"verified": summary.VerifiedRows,
		"rejected": summary.RejectedRows,
	}).Info("preview completed")

	return nil
}

// failBatch records the fatal error on the batch, moves it to failed and
// returns the error. Phase writes are expected to have been rolled back
// by the caller already.
func (s *ImportService) failBatch(batch *models.ImportBatch, cause error) error {
	batch.Status = models.BatchFailed
	batch.Errors = models.ErrorList{cause.Error()}
	if err := s.importRepo.UpdateBatch(batch); err != nil {
		s.log.WithError(err).WithField("batch", batch.BatchCode).Error("failed to mark batch failed")
	}
	s.log.WithError(cause).WithField("batch", batch.BatchCode).Error("batch failed")
	return cause
}

// setProgress publishes phase progress for polling clients. Progress is
// best effort and skipped when redis is not configured.
func (s *ImportService) setProgress(ctx context.Context, batchID int64, percent int) {
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf("import:progress:%d", batchID)
	s.redis.Set(ctx, key, percent, 0)
}

// GetProgress reads the published progress of a batch, zero when unknown.
func (s *ImportService) GetProgress(ctx context.Context, batchID int64) int {
	if s.redis == nil {
		return 0
	}
	key := fmt.Sprintf("import:progress:%d", batchID)
	percent, err := s.redis.Get(ctx, key).Int()
	if err != nil {
		return 0
	}
	return percent
}
