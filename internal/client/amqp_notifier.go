package client

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"stoik.com/trawler/internal/core/domain"
)

// Publisher is implemented by the AMQP infrastructure publisher.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, message any) error
}

type AMQPNotifier struct {
	publisher Publisher
	validate  *validator.Validate
}

func NewAMQPNotifier(publisher Publisher, validate *validator.Validate) *AMQPNotifier {
	return &AMQPNotifier{
		publisher: publisher,
		validate:  validate,
	}
}

// NotifyReportRecorded validates message and publishes it to the report exchange.
func (n *AMQPNotifier) NotifyReportRecorded(ctx context.Context, message *domain.ReportRecordedMessage) error {
	if err := n.validate.Struct(message); err != nil {
		return fmt.Errorf("invalid report recorded message: %w", err)
	}
	return n.publisher.Publish(ctx, domain.ReportExchange, domain.RoutingKeyReportRecorded, message)
}
