//go:build e2e

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"bistro/internal/infra/notify"
	"bistro/internal/pkg/config"
	"bistro/internal/usecase/shared"
	"bistro/tests/common/builder"

	"github.com/docker/go-connections/nat"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRabbitMQ(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
			Labels:       map[string]string{"purpose": "e2e-tests"},
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start the RabbitMQ container")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Terminate(ctx); err != nil {
			slog.Warn("failed to terminate the RabbitMQ container", "error", err.Error())
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, nat.Port("5672/tcp"))
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestAMQPNotifier_Publishes(t *testing.T) {
	url := startRabbitMQ(t)
	cfg := config.AMQPConfig{URL: url, Exchange: "bistro", Queue: "reservation.events.e2e"}

	n := notify.NewAMQPNotifier(cfg)
	t.Cleanup(func() { _ = n.Close() })

	r := builder.NewReservationBuilder().WithID(12).WithCode("code-12").AsApproved(2).BuildStored()
	// the broker may accept connections a moment before it accepts logins
	require.Eventually(t, func() bool {
		return n.Notify(context.Background(), shared.NewNotification(shared.EventApproved, r, time.Now())) == nil
	}, 30*time.Second, 500*time.Millisecond)

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ch, err := conn.Channel()
	require.NoError(t, err)

	var msg amqp.Delivery
	require.Eventually(t, func() bool {
		d, ok, err := ch.Get(cfg.Queue, true)
		if err != nil || !ok {
			return false
		}
		msg = d
		return true
	}, 10*time.Second, 100*time.Millisecond)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "reservation.approved", msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var event notify.ReservationEvent
	require.NoError(t, json.Unmarshal(msg.Body, &event))
	assert.Equal(t, int64(12), event.ReservationID)
	assert.Equal(t, "code-12", event.ConfirmationCode)
	assert.Equal(t, 2, event.TableID)
}
