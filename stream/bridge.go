package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Bridge mirrors locally published board events onto a Redis channel and
// injects events published by other instances into the local hub. Each
// bridge tags outgoing envelopes with its own origin id and skips them on
// the way back in, so a publisher's instance never double-delivers.
type Bridge struct {
	hub     *Hub
	rc      *redis.Client
	channel string
	origin  string
	logger  *log.Logger
}

type bridgeEnvelope struct {
	Origin  string          `json:"origin"`
	BoardID string          `json:"boardId"`
	Payload json.RawMessage `json:"payload"`
}

// NewBridge wires the hub's forwarder to the Redis channel. Call before
// any client connects.
func NewBridge(hub *Hub, rc *redis.Client, channel string, logger *log.Logger) *Bridge {
	b := &Bridge{
		hub:     hub,
		rc:      rc,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
	hub.SetForwarder(b.publish)
	return b
}

func (b *Bridge) publish(boardID string, payload []byte) {
	data, err := sonic.Marshal(bridgeEnvelope{Origin: b.origin, BoardID: boardID, Payload: payload})
	if err != nil {
		b.logger.WithError(err).Error("encode bridge envelope")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.rc.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.WithError(err).Warn("publish board event to redis")
	}
}

// Run subscribes to the bridge channel and feeds remote events into the
// hub until the context is cancelled. On subscription failure it retries
// after a short pause.
func (b *Bridge) Run(ctx context.Context) {
	for {
		if err := b.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.WithError(err).Warn("bridge subscription lost, reconnecting")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *Bridge) consume(ctx context.Context) error {
	sub := b.rc.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return ctx.Err()
			}
			var env bridgeEnvelope
			if err := sonic.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.WithError(err).Debug("invalid bridge envelope, ignoring")
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Broadcast(env.BoardID, env.Payload)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
