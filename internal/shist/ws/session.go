package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/shist-app/shist/pkg/slogx"

	"golang.org/x/time/rate"
)

const (
	// maxFramesPerSecond bounds inbound client frames per connection.
	// Subscription churn above this is abuse; the connection is closed.
	maxFramesPerSecond = 10
	frameBurst         = 20

	maxDecodeErrorsPerConn = 5
)

// Session runs the read loop of one authenticated websocket connection:
// decoding subscribe/unsubscribe frames, enforcing the per-connection frame
// limit, and keeping the hub in sync until the client goes away.
type Session struct {
	Hub  *Hub
	Peer *Peer

	// Authorize decides whether this connection's user may watch a list.
	// It returns the service-layer NOT_FOUND/FORBIDDEN errors.
	Authorize func(ctx context.Context, listID string) error
}

// Run consumes frames from r until EOF, a limiter violation, or repeated
// garbage. The peer is dropped from the hub on the way out.
func (s *Session) Run(ctx context.Context, r io.Reader) {
	log := slogx.FromContext(ctx)
	defer s.Hub.Drop(s.Peer)

	limiter := rate.NewLimiter(rate.Limit(maxFramesPerSecond), frameBurst)
	decoder := json.NewDecoder(r)
	decodeErrors := 0

	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			decodeErrors++
			_ = s.Peer.send(errorEvent("INVALID_ARGUMENT", "invalid frame payload"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			// a json.Decoder does not recover from malformed input
			decoder = json.NewDecoder(r)
			continue
		}
		decodeErrors = 0

		if !limiter.Allow() {
			log.Warn("websocket frame limit exceeded, closing connection")
			_ = s.Peer.send(errorEvent("RESOURCE_EXHAUSTED", "frame rate limit exceeded"))
			return
		}

		s.handleFrame(ctx, frame)
	}
}

func (s *Session) handleFrame(ctx context.Context, frame Frame) {
	listID := strings.TrimSpace(frame.ListID)

	switch frame.Type {
	case FrameSubscribeList:
		if listID == "" {
			_ = s.Peer.send(errorEvent("INVALID_ARGUMENT", "listId is required"))
			return
		}
		if err := s.Authorize(ctx, listID); err != nil {
			slogx.FromContext(ctx).Warn("websocket subscribe rejected",
				slog.String("list_id", listID),
				slog.Any("error", err),
			)
			_ = s.Peer.send(errorEvent("FORBIDDEN", "cannot subscribe to this list"))
			return
		}
		s.Hub.Subscribe(listID, s.Peer)

	case FrameUnsubscribeList:
		if listID == "" {
			_ = s.Peer.send(errorEvent("INVALID_ARGUMENT", "listId is required"))
			return
		}
		s.Hub.Unsubscribe(listID, s.Peer)

	default:
		// Unknown frame types get an error frame, not a disconnect.
		_ = s.Peer.send(errorEvent("INVALID_ARGUMENT", "unsupported frame type"))
	}
}
