package amqp

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/core/domain"
)

// Binding routes messages published on Exchange with RoutingKey into Queue.
type Binding struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// ReportBindings is the topology the intake service publishes into.
var ReportBindings = []Binding{
	{
		Exchange:   domain.ReportExchange,
		Queue:      domain.ReportReviewQueue,
		RoutingKey: domain.RoutingKeyReportRecorded,
	},
}

// TopologyManager declares exchanges, queues and bindings. Declarations are
// idempotent so every service instance runs Setup at startup.
type TopologyManager struct {
	client *Client
}

func NewTopologyManager(client *Client) *TopologyManager {
	return &TopologyManager{
		client: client,
	}
}

// Setup declares each exchange and queue once, then binds them.
func (t *TopologyManager) Setup(bindings ...Binding) error {
	ch := t.client.Channel()

	declared := make(map[string]bool)
	for _, b := range bindings {
		if !declared["exchange:"+b.Exchange] {
			// topic, durable, not auto-deleted, not internal
			if err := ch.ExchangeDeclare(b.Exchange, "topic", true, false, false, false, nil); err != nil {
				return fmt.Errorf("failed to declare exchange '%s': %w", b.Exchange, err)
			}
			declared["exchange:"+b.Exchange] = true
		}

		if !declared["queue:"+b.Queue] {
			// durable, kept when unused, shared
			if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, amqp.Table{
				amqp.QueueTypeArg: amqp.QueueTypeQuorum,
			}); err != nil {
				return fmt.Errorf("failed to declare queue '%s': %w", b.Queue, err)
			}
			declared["queue:"+b.Queue] = true
		}

		if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s' with routing key '%s': %w",
				b.Queue, b.Exchange, b.RoutingKey, err)
		}

		log.WithFields(log.Fields{
			"queue":      b.Queue,
			"exchange":   b.Exchange,
			"routingKey": b.RoutingKey,
		}).Debug("Queue bound to exchange")
	}

	log.Info("AMQP topology setup completed successfully")
	return nil
}
