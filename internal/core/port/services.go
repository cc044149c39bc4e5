package port

import (
	"context"

	"stoik.com/trawler/internal/core/domain"
)

type ReportService interface {
	Submit(ctx context.Context, document []byte) (*domain.Report, error)
	Record(ctx context.Context, submission domain.ReportSubmission) (*domain.Report, error)
	ListReports(ctx context.Context) ([]domain.ReportSummary, error)
	GetEmail(ctx context.Context, emailID string) (*domain.EmailRecord, error)
}
