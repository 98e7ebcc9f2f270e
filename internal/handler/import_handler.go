package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"property-web/internal/config"
	"property-web/internal/models"
	"property-web/internal/repository"
	"property-web/internal/service"
	"property-web/internal/utils"
)

type ImportHandler struct {
	importRepo    *repository.ImportRepository
	importService *service.ImportService
	excelService  *service.ExcelService
	asynqClient   *asynq.Client
	cfg           *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	importService *service.ImportService,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:    importRepo,
		importService: importService,
		excelService:  excelService,
		asynqClient:   asynqClient,
		cfg:           cfg,
	}
}

// UploadFile accepts a spreadsheet, creates an import batch and queues the
// preview task that parses and validates it in the background.
func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	// Validate file type
	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}

	// Validate file size
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	// Generate batch code
	batchCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])

	// Save file
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", batchCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	batch := &models.ImportBatch{
		BatchCode: batchCode,
		Filename:  file.Filename,
		FilePath:  filePath,
		Status:    models.BatchPending,
	}

	if err := h.importRepo.CreateBatch(batch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import batch", err)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	payload, _ := json.Marshal(fiber.Map{
		"batch_id":   batch.ID,
		"batch_code": batch.BatchCode,
	})

	task := asynq.NewTask(service.TaskImportPreview, payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue preview task", err)
	}

	return utils.SuccessResponse(c, "File uploaded successfully", fiber.Map{
		"job_id": info.ID,
		"batch":  batch,
	})
}

func (h *ImportHandler) GetBatches(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	batches, total, err := h.importRepo.GetBatches(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import batches", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Import batches retrieved successfully", fiber.Map{
		"batches": batches,
	}, pagination)
}

func (h *ImportHandler) GetBatch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", err)
	}

	batch, err := h.importRepo.GetBatchByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	return utils.SuccessResponse(c, "Import batch retrieved successfully", batch)
}

// GetBatchRows returns the staged rows of a batch, optionally filtered by
// status and record type via query parameters.
func (h *ImportHandler) GetBatchRows(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", err)
	}

	var status models.RowStatus
	if raw := c.Query("status"); raw != "" {
		status, err = models.ParseRowStatus(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status filter", err)
		}
	}

	var kind models.RowKind
	if raw := c.Query("type"); raw != "" {
		kind, err = models.ParseRowKind(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid type filter", err)
		}
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	rows, total, err := h.importRepo.GetRowsByBatchFiltered(id, status, kind, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve rows", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Rows retrieved successfully", fiber.Map{
		"rows": rows,
	}, pagination)
}

// CommitBatch writes the verified subset of a previewed batch to the
// property store. The batch must have completed preview first.
func (h *ImportHandler) CommitBatch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", err)
	}

	batch, err := h.importService.Commit(id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotPreviewed) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Batch has not been previewed", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit import batch", err)
	}

	return utils.SuccessResponse(c, "Import committed successfully", batch)
}

func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", err)
	}

	batch, err := h.importRepo.GetBatchByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	percent := h.importService.GetProgress(c.Context(), id)

	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"batch_id": batch.ID,
		"status":   batch.Status,
		"percent":  percent,
	})
}

// DownloadErrorReport generates a spreadsheet listing the rejected rows of a
// batch together with their validation messages.
func (h *ImportHandler) DownloadErrorReport(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", err)
	}

	batch, err := h.importRepo.GetBatchByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	rows, err := h.importRepo.GetRowsByBatch(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve rows", err)
	}

	fileName := fmt.Sprintf("errors_%s_%s.xlsx", batch.BatchCode, time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(h.cfg.ExportPath, fileName)

	if err := h.excelService.ExportErrorReport(batch, rows, outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate error report", err)
	}

	return c.Download(outputPath, fileName)
}

// DownloadTemplate serves a blank import template with the required headers.
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	fileName := "property_import_template.xlsx"
	outputPath := filepath.Join(h.cfg.ExportPath, fileName)

	if err := h.excelService.GenerateImportTemplate(outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(outputPath, fileName)
}
