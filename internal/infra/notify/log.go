package notify

import (
	"context"
	"log/slog"

	"bistro/internal/usecase/shared"
)

// LogNotifier writes notifications to the structured log. It is the default when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ shared.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg shared.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"event", string(msg.Event),
		"reservation_id", msg.ReservationID,
		"date", msg.Date.String(),
		"time", msg.Time.String(),
		"table_id", msg.TableID,
		"channel", msg.ChannelHint,
		"contact", msg.Contact.Name)
	return nil
}
