package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportExchange           = "report"
	ReportReviewQueue        = "report.review"
	RoutingKeyReportRecorded = "report.recorded"
)

type ReportRecordedMessage struct {
	ReportID   uuid.UUID `json:"report_id" validate:"required"`
	EmailID    string    `json:"email_id" validate:"required"`
	Reporter   string    `json:"reporter" validate:"required"`
	ReportTime time.Time `json:"report_time" validate:"required"`
	NewEmail   bool      `json:"new_email"`
	RecordedAt time.Time `json:"recorded_at" validate:"required"`
}
