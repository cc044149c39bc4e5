package port

import (
	"context"

	"stoik.com/trawler/internal/core/domain"
)

// ReportsStorage is the unit-of-work boundary. Everything fn does through tx is
// committed together when fn returns nil and rolled back otherwise.
type ReportsStorage interface {
	WithinTx(ctx context.Context, fn func(tx ReportsTx) error) error
	ListReports(ctx context.Context) ([]domain.ReportSummary, error)
	GetEmail(ctx context.Context, emailID string) (*domain.EmailRecord, error)
}

type ReportsTx interface {
	GetEmailByID(ctx context.Context, emailID string) (*domain.Email, error)
	GetAddressByKey(ctx context.Context, address string) (*domain.EmailAddress, error)
	// InsertAddress is a no-op when the address already exists.
	InsertAddress(ctx context.Context, address domain.EmailAddress) error
	// InsertEmail reports false when an email with the same id already exists.
	InsertEmail(ctx context.Context, email domain.Email) (bool, error)
	InsertHeaders(ctx context.Context, headers []domain.EmailHeader) error
	InsertRecipients(ctx context.Context, kind domain.RecipientKind, emailID string, addresses []domain.EmailAddress) error
	InsertAttachments(ctx context.Context, attachments []domain.EmailAttachment) error
	InsertReport(ctx context.Context, report domain.Report) error
}
