package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"github.com/Macaies/Permit-app/internal/dto"
	"github.com/Macaies/Permit-app/internal/mailer"
	"github.com/Macaies/Permit-app/internal/rabbit"
)

// Reader drains the notification queue and turns each submission message
// into a confirmation email. Mail failures are logged and the message is
// acked anyway: notification is best-effort by design.
type Reader struct {
	RMQ    *rabbit.Client
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client) *Reader {
	return &Reader{
		RMQ:  rmq,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("Notification reader started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(handleMessage); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("Notification reader stopped by context")
	}()
}

// handleMessage always returns nil: a message that cannot be parsed or
// mailed is logged and acked, never requeued. Requeueing a bad payload
// would loop it through the queue forever.
func handleMessage(body []byte) error {
	var msg dto.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		zlog.Logger.Error().
			Err(err).
			Msgf("Failed to unmarshal notification message: %s", string(body))
		return nil
	}

	zlog.Logger.Info().
		Int("application_id", msg.ApplicationID).
		Str("event_name", msg.EventName).
		Msg("Received notification message")

	if err := mailer.SendSubmissionEmail(
		&zlog.Logger,
		msg.EventName,
		msg.Classification,
		msg.Email,
	); err != nil {
		zlog.Logger.Warn().
			Err(err).
			Int("application_id", msg.ApplicationID).
			Msg("Failed to send confirmation email")
	}

	return nil
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
