package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
)

// ReportService exports ledger data as CSV for offline reconciliation.
type ReportService interface {
	ExportTransactionsCSV(ctx context.Context, period string, customStart, customEnd time.Time) ([]byte, error)
	ExportAuditTrailCSV(ctx context.Context, filter *models.AuditFilter) ([]byte, error)
}

type reportService struct {
	txRepo    repository.TransactionRepository
	auditRepo repository.AuditRepository
	windower  *ledger.Windower
}

func NewReportService(
	txRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	windower *ledger.Windower,
) ReportService {
	return &reportService{
		txRepo:    txRepo,
		auditRepo: auditRepo,
		windower:  windower,
	}
}

// ExportTransactionsCSV renders the transactions of a period as CSV,
// newest first to match the API listings.
func (s *reportService) ExportTransactionsCSV(ctx context.Context, period string, customStart, customEnd time.Time) ([]byte, error) {
	start, end := customStart, customEnd
	if period != ledger.PeriodCustom {
		start, end = s.windower.Window(period, time.Now())
	}

	txs, err := s.txRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"transaction_id", "type", "status", "user_id", "user_name",
		"usdt_amount", "php_amount", "rate", "fee", "platform", "bank",
		"note", "timestamp",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.TransactionID,
			tx.Type,
			tx.Status,
			tx.UserID,
			tx.UserName,
			tx.USDTAmount.String(),
			tx.PHPAmount.String(),
			tx.Rate.String(),
			tx.Fee.String(),
			tx.Platform,
			tx.Bank,
			tx.Note,
			tx.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportAuditTrailCSV renders the audit trail as CSV. Old and new values are
// embedded as JSON so structured snapshots survive the flattening.
func (s *reportService) ExportAuditTrailCSV(ctx context.Context, filter *models.AuditFilter) ([]byte, error) {
	var entries []*models.AuditLog
	var err error
	if filter == nil {
		entries, err = s.auditRepo.GetAll(ctx, 0, 0)
	} else {
		entries, err = s.auditRepo.GetFiltered(ctx, filter, 0, 0)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"type", "actor", "target", "reason", "old_value", "new_value", "timestamp"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.Type,
			entry.Actor,
			entry.Target,
			entry.Reason,
			encodeValue(entry.OldValue),
			encodeValue(entry.NewValue),
			entry.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
