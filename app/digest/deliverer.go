package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/transport"
)

// State of the delivery cycle. One Deliverer runs one cycle at a time.
type State string

const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateSending   State = "sending"
	StateDelivered State = "delivered"
	StateFailed    State = "failed"
)

const (
	maxSendAttempts        = 3
	connectivityRetryDelay = 5 * time.Second
	otherRetryDelay        = 3 * time.Second
)

// ItemMarker is the slice of the item store the deliverer mutates.
type ItemMarker interface {
	MarkSent(ids []int64) error
}

// DeliveryLogger appends the outcome of each delivery attempt.
type DeliveryLogger interface {
	Log(itemCount int, success bool, errorMessage string) error
}

type Deliverer struct {
	renderer  *Renderer
	transport transport.Transport
	items     ItemMarker
	log       DeliveryLogger

	connectivityDelay time.Duration
	otherDelay        time.Duration

	state State
}

func NewDeliverer(renderer *Renderer, tr transport.Transport, items ItemMarker, log DeliveryLogger) *Deliverer {
	return &Deliverer{
		renderer:          renderer,
		transport:         tr,
		items:             items,
		log:               log,
		connectivityDelay: connectivityRetryDelay,
		otherDelay:        otherRetryDelay,
		state:             StateIdle,
	}
}

func (d *Deliverer) State() State {
	return d.state
}

// Run delivers one unsent batch. An empty batch is a successful no-op with
// no transport call. On success exactly the batch ids are marked sent and a
// success log entry is appended; on failure the items stay unsent and are
// naturally retried on the next cycle.
func (d *Deliverer) Run(ctx context.Context, batch []database.Item) error {
	if len(batch) == 0 {
		d.state = StateIdle
		slog.Info("No unsent items, skipping delivery")
		return nil
	}

	d.state = StateRendering
	message, err := d.renderer.Run(batch)
	if err != nil {
		return d.fail(len(batch), fmt.Errorf("failed to render digest: %w", err))
	}

	d.state = StateSending
	if err := d.send(ctx, message); err != nil {
		return d.fail(len(batch), err)
	}

	ids := make([]int64, len(batch))
	for i, item := range batch {
		ids[i] = item.ID
	}

	if err := d.items.MarkSent(ids); err != nil {
		// Transport succeeded but state was not recorded: the batch will be
		// resent next cycle. At-least-once delivery, by contract.
		return d.fail(len(batch), fmt.Errorf("delivered but failed to mark items as sent: %w", err))
	}

	d.state = StateDelivered
	if err := d.log.Log(len(batch), true, ""); err != nil {
		slog.Error("Failed to append delivery log entry", "error", err)
	}

	slog.Info("Digest delivered", "items", len(batch))

	return nil
}

func (d *Deliverer) send(ctx context.Context, message string) error {
	var lastErr error

	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		err := d.transport.Send(ctx, message)
		if err == nil {
			return nil
		}
		lastErr = err

		var authErr *transport.AuthError
		if errors.As(err, &authErr) {
			// Bad credentials will not fix themselves.
			return err
		}

		if attempt == maxSendAttempts {
			break
		}

		delay := d.otherDelay
		var connErr *transport.ConnectivityError
		if errors.As(err, &connErr) {
			delay = d.connectivityDelay
		}

		slog.Warn("Send attempt failed, retrying", "attempt", attempt, "max_attempts", maxSendAttempts, "delay", delay.String(), "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("send failed after %d attempts: %w", maxSendAttempts, lastErr)
}

func (d *Deliverer) fail(itemCount int, err error) error {
	d.state = StateFailed
	if logErr := d.log.Log(itemCount, false, err.Error()); logErr != nil {
		slog.Error("Failed to append delivery log entry", "error", logErr)
	}
	return err
}
