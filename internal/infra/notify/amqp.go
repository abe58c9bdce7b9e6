package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bistro/internal/pkg/config"
	"bistro/internal/pkg/errs"
	"bistro/internal/usecase/shared"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes reservation events to RabbitMQ. The connection is opened lazily and
// dropped on any failure so that the next publish redials.
type AMQPNotifier struct {
	cfg config.AMQPConfig

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

const defaultDialTimeout = 5 * time.Second

var _ shared.Notifier = (*AMQPNotifier)(nil)

func NewAMQPNotifier(cfg config.AMQPConfig) *AMQPNotifier {
	return &AMQPNotifier{cfg: cfg}
}

func (n *AMQPNotifier) Notify(ctx context.Context, msg shared.Notification) error {
	body, err := json.Marshal(NewReservationEvent(msg))
	if err != nil {
		return errs.Wrap(err, "failed to marshal reservation event")
	}

	ch, err := n.channel(ctx)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         string(msg.Event),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		n.cfg.Exchange,
		n.routingKey(),
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		n.drop(ch)
		return errs.Wrap(err, "failed to publish reservation event")
	}
	return nil
}

// routing key = queue name on the default exchange
func (n *AMQPNotifier) routingKey() string {
	return n.cfg.Queue
}

// channel returns the open channel or connects a new one. The lock is not held while
// connecting, so a slow broker only delays the callers that need the connection.
func (n *AMQPNotifier) channel(ctx context.Context) (*amqp.Channel, error) {
	n.mu.Lock()
	if n.ch != nil && !n.ch.IsClosed() {
		ch := n.ch
		n.mu.Unlock()
		return ch, nil
	}
	n.mu.Unlock()

	conn, ch, err := n.connect(ctx)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil && !n.ch.IsClosed() {
		// lost the race to a concurrent publisher
		_ = ch.Close()
		_ = conn.Close()
		return n.ch, nil
	}
	n.reset()
	n.conn, n.ch = conn, ch
	return ch, nil
}

func (n *AMQPNotifier) connect(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errs.Wrap(err, "rabbitmq dial failed")
	}
	conn, err := amqp.DialConfig(n.cfg.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(n.dialTimeout(ctx)),
	})
	if err != nil {
		return nil, nil, errs.Wrap(err, "rabbitmq dial failed")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "rabbitmq channel open failed")
	}

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(
		n.cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "rabbitmq queue declare failed")
	}
	if n.cfg.Exchange != "" {
		err := ch.ExchangeDeclare(n.cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil)
		if err == nil {
			err = ch.QueueBind(n.cfg.Queue, n.routingKey(), n.cfg.Exchange, false, nil)
		}
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, errs.Wrap(err, "rabbitmq exchange setup failed")
		}
	}
	return conn, ch, nil
}

// dialTimeout covers the TCP connect and the AMQP handshake.
func (n *AMQPNotifier) dialTimeout(ctx context.Context) time.Duration {
	timeout := n.cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, max(time.Until(deadline), time.Millisecond))
	}
	return timeout
}

// drop forgets ch after a failed publish unless another caller already replaced it.
func (n *AMQPNotifier) drop(ch *amqp.Channel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch == ch {
		n.reset()
	}
}

func (n *AMQPNotifier) reset() {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
	n.conn, n.ch = nil, nil
}

// Close releases the broker connection.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset()
	slog.Info("amqp notifier closed")
	return nil
}
