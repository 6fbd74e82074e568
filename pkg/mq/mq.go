package mq

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(topic string, payload []byte) error
}

type Subscriber interface {
	Subscribe(topic string, handler func([]byte) error) error
}

type Noop struct{}

func (Noop) Publish(topic string, payload []byte) error               { return nil }
func (Noop) Subscribe(topic string, handler func([]byte) error) error { return nil }

// NATS publishes and subscribes over a core NATS connection.
type NATS struct {
	nc *nats.Conn
}

func ConnectNATS(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("todo-tracker"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("[mq] Connected to NATS at %s", url)
	return &NATS{nc: nc}, nil
}

func (n *NATS) Publish(topic string, payload []byte) error {
	if err := n.nc.Publish(topic, payload); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe runs handler for every message on topic. Handler errors are
// logged; core NATS has no redelivery.
func (n *NATS) Subscribe(topic string, handler func([]byte) error) error {
	_, err := n.nc.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			log.Printf("[mq] Handler for %s failed: %v", msg.Subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	if n.nc == nil {
		return nil
	}
	if err := n.nc.Drain(); err != nil {
		n.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	log.Println("[mq] Connection closed")
	return nil
}
