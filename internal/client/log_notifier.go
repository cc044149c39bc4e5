package client

import (
	"context"

	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/core/domain"
)

// LogNotifier is used when no broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyReportRecorded(_ context.Context, message *domain.ReportRecordedMessage) error {
	log.WithFields(log.Fields{
		"reportID": message.ReportID,
		"emailID":  message.EmailID,
		"newEmail": message.NewEmail,
	}).Debug("Report recorded (no broker configured)")
	return nil
}
