package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE COMPLIANCE / GRADING RECORDS
// Archival writes for the AI-assisted compliance audit and handwritten-work
// grading flows. Both are fire-and-forget from the caller's point of view:
// a failed remote write still resolves with a synthetic acknowledgement.
// ══════════════════════════════════════════════════════════════════════════════

// RecordWriter defines the archival writes the handler needs.
type RecordWriter interface {
	Available() bool
	SaveComplianceRecord(ctx context.Context, payload map[string]any) error
	SaveGradingRecord(ctx context.Context, payload map[string]any) error
}

// SaveRecordResult acknowledges an archival write.
type SaveRecordResult struct {
	AckID   string
	Local   bool
	SavedAt time.Time
}

// SaveRecordsHandler handles compliance and grading archival writes.
type SaveRecordsHandler struct {
	writer RecordWriter
	logger *slog.Logger
}

// NewSaveRecordsHandler creates a new SaveRecordsHandler.
func NewSaveRecordsHandler(writer RecordWriter, logger *slog.Logger) *SaveRecordsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveRecordsHandler{
		writer: writer,
		logger: logger.With(slog.String("component", "save_records")),
	}
}

// SaveCompliance archives a compliance audit result.
func (h *SaveRecordsHandler) SaveCompliance(ctx context.Context, userEmail string, payload map[string]any) (*SaveRecordResult, error) {
	if userEmail == "" || len(payload) == 0 {
		return nil, shared.NewDomainError("compliance", "save_compliance", shared.ErrValidation, "user email and payload are required")
	}
	payload["u_student"] = userEmail
	return h.save(ctx, "compliance", func(ctx context.Context) error {
		return h.writer.SaveComplianceRecord(ctx, payload)
	}), nil
}

// SaveGrading archives a handwritten-work review.
func (h *SaveRecordsHandler) SaveGrading(ctx context.Context, userEmail string, payload map[string]any) (*SaveRecordResult, error) {
	if userEmail == "" || len(payload) == 0 {
		return nil, shared.NewDomainError("grading", "save_grading", shared.ErrValidation, "user email and payload are required")
	}
	payload["u_student"] = userEmail
	return h.save(ctx, "grading", func(ctx context.Context) error {
		return h.writer.SaveGradingRecord(ctx, payload)
	}), nil
}

func (h *SaveRecordsHandler) save(ctx context.Context, kind string, write func(context.Context) error) *SaveRecordResult {
	result := &SaveRecordResult{
		AckID:   localID(),
		SavedAt: time.Now().UTC(),
	}
	if h.writer == nil || !h.writer.Available() {
		result.Local = true
		return result
	}
	if err := write(ctx); err != nil {
		result.Local = true
		h.logger.Warn("archival write failed, acknowledging locally",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
	return result
}
