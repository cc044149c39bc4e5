package amqp

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Client owns one broker connection and the channel used for publishing.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex
	url     string
	name    string
}

// NewClient dials the broker and opens the publishing channel. The connection
// name shows up in the RabbitMQ management UI.
func NewClient(url, connectionName string) (*Client, error) {
	client := &Client{
		url:  url,
		name: connectionName,
	}

	if err := client.connect(); err != nil {
		return nil, fmt.Errorf("failed to create AMQP client: %w", err)
	}

	return client, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	config := amqp.Config{Properties: amqp.NewConnectionProperties()}
	config.Properties.SetClientConnectionName(c.name)

	conn, err := amqp.DialConfig(c.url, config)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	go c.watchClose(conn.NotifyClose(make(chan *amqp.Error, 1)))

	log.WithField("connection", c.name).Info("AMQP client connected")
	return nil
}

// watchClose logs an unexpected connection loss.
func (c *Client) watchClose(closed <-chan *amqp.Error) {
	if err, ok := <-closed; ok && err != nil {
		log.WithError(err).WithField("connection", c.name).Error("AMQP connection closed")
	}
}

// Channel returns the channel opened at connect time.
func (c *Client) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	return errors.Join(errs...)
}
