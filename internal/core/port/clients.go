package port

import (
	"context"

	"stoik.com/trawler/internal/core/domain"
)

type NotifierClient interface {
	NotifyReportRecorded(ctx context.Context, message *domain.ReportRecordedMessage) error
}
