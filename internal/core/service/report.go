package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
	"stoik.com/trawler/internal/metrics"
)

// A constraint violation at commit means another submission raced us on a
// natural key; the whole unit of work is replayed this many times.
const maxRecordRetries = 1

type ReportService struct {
	storage        port.ReportsStorage
	notifierClient port.NotifierClient
	schema         *SchemaValidator
	validate       *validator.Validate
	normalizer     *EmailNormalizer
	now            func() time.Time
}

func NewReportService(
	storage port.ReportsStorage,
	notifierClient port.NotifierClient,
	schema *SchemaValidator,
	validate *validator.Validate,
) *ReportService {
	return &ReportService{
		storage:        storage,
		notifierClient: notifierClient,
		schema:         schema,
		validate:       validate,
		normalizer:     NewEmailNormalizer(),
		now:            time.Now,
	}
}

// Submit validates a raw report document and records it.
func (s *ReportService) Submit(ctx context.Context, document []byte) (*domain.Report, error) {
	if err := s.schema.Validate(document); err != nil {
		metrics.IncrementSubmitted(metrics.OutcomeRejected)
		return nil, err
	}

	var submission domain.ReportSubmission
	if err := json.Unmarshal(document, &submission); err != nil {
		metrics.IncrementSubmitted(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidReport, err)
	}

	if err := s.validate.Struct(submission); err != nil {
		metrics.IncrementSubmitted(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidReport, err)
	}

	return s.Record(ctx, submission)
}

// Record stores a report and, if its message id is new, the reported email.
// An email that is already stored is never modified.
func (s *ReportService) Record(ctx context.Context, submission domain.ReportSubmission) (*domain.Report, error) {
	start := s.now()

	reportTime, err := ParseReportTime(submission.ReportTime)
	if err != nil {
		metrics.IncrementSubmitted(metrics.OutcomeRejected)
		return nil, err
	}

	report := &domain.Report{
		ID:         uuid.New(),
		Reporter:   submission.Reporter,
		ReportTime: reportTime,
		EmailID:    submission.MessageID,
	}

	var created bool
	for attempt := 0; ; attempt++ {
		created, err = s.record(ctx, report, submission.EmailPayload)
		if err == nil || attempt >= maxRecordRetries || !errors.Is(err, domain.ErrConstraintViolation) {
			break
		}
		log.WithError(err).WithField("messageID", report.EmailID).Warn("Constraint violation while recording report, retrying")
	}
	if err != nil {
		if domain.IsClientError(err) {
			metrics.IncrementSubmitted(metrics.OutcomeRejected)
		} else {
			metrics.IncrementSubmitted(metrics.OutcomeFailed)
		}
		return nil, err
	}

	metrics.IncrementSubmitted(metrics.OutcomeRecorded)
	metrics.ObserveRecordDuration(s.now().Sub(start))
	if created {
		metrics.IncrementEmailsCreated()
	}

	log.WithFields(log.Fields{
		"reportID":  report.ID,
		"messageID": report.EmailID,
		"reporter":  report.Reporter,
		"newEmail":  created,
	}).Info("Report recorded")

	s.notify(ctx, report, created)

	return report, nil
}

func (s *ReportService) record(ctx context.Context, report *domain.Report, payload domain.EmailPayload) (bool, error) {
	created := false

	err := s.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		_, err := tx.GetEmailByID(ctx, report.EmailID)
		switch {
		case errors.Is(err, domain.ErrEmailNotFound):
			created, err = s.normalizer.Normalize(ctx, tx, report.EmailID, payload)
			if err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to look up email %q: %w", report.EmailID, err)
		}

		if err := tx.InsertReport(ctx, *report); err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		return nil
	})

	return created, err
}

func (s *ReportService) notify(ctx context.Context, report *domain.Report, created bool) {
	message := &domain.ReportRecordedMessage{
		ReportID:   report.ID,
		EmailID:    report.EmailID,
		Reporter:   report.Reporter,
		ReportTime: report.ReportTime,
		NewEmail:   created,
		RecordedAt: s.now().UTC(),
	}
	if err := s.notifierClient.NotifyReportRecorded(ctx, message); err != nil {
		// The report is committed; a lost notification is not worth failing the request.
		log.WithError(err).WithField("reportID", report.ID).Error("Failed to notify report recorded")
	}
}

func (s *ReportService) ListReports(ctx context.Context) ([]domain.ReportSummary, error) {
	return s.storage.ListReports(ctx)
}

func (s *ReportService) GetEmail(ctx context.Context, emailID string) (*domain.EmailRecord, error) {
	return s.storage.GetEmail(ctx, emailID)
}

// ParseReportTime accepts RFC 3339 and the other common date layouts.
// Values without a zone are read as UTC.
func ParseReportTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", domain.ErrInvalidReportTime)
	}
	parsed, err := dateparse.ParseIn(strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", domain.ErrInvalidReportTime, value, err)
	}
	return parsed, nil
}
