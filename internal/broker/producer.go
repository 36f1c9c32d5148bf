// Package broker publishes order lifecycle events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"eventhub/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"

	producerName = "eventhub-api"
)

// Envelope wraps every message written to the orders topic.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// OrderPayload is the body of every order event.
type OrderPayload struct {
	OrderID     int64              `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      int64              `json:"user_id"`
	Status      domain.OrderStatus `json:"status"`
	Previous    domain.OrderStatus `json:"previous_status,omitempty"`
	TotalCents  int64              `json:"total_cents"`
	Items       []domain.OrderItem `json:"items,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages and writes them from a single goroutine.
// Publish never blocks; when the buffer is full the message is dropped and logged.
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	done    chan struct{}
	logger  *log.Logger
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

func NewProducer(brokers []string, topic string, buf int, logger *log.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, buf, logger)
}

func newProducer(w messageWriter, buf int, logger *log.Logger) *Producer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Start runs the write loop until Close is called.
func (p *Producer) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.logger.Printf("broker: write key=%s error=%v", m.Key, err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			p.logger.Printf("broker: close writer error=%v", err)
		}
	}()
}

// PublishOrder enqueues an order event keyed by order id.
func (p *Producer) PublishOrder(ctx context.Context, eventType string, payload OrderPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Printf("broker: encode payload error=%v", err)
		return
	}
	env, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Payload:      body,
	})
	if err != nil {
		p.logger.Printf("broker: encode envelope error=%v", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	msg := kafka.Message{
		Key:     []byte(strconv.FormatInt(payload.OrderID, 10)),
		Value:   env,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Printf("broker: buffer full, dropped %s for order=%d", eventType, payload.OrderID)
	}
}

// Close flushes buffered messages and waits for the writer to finish.
func (p *Producer) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
	<-p.done
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishOrder(context.Context, string, OrderPayload) {}

// Publisher is satisfied by both Producer and Noop.
type Publisher interface {
	PublishOrder(ctx context.Context, eventType string, payload OrderPayload)
}
