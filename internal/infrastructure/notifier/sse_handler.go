package notifier

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/response"
)

// EventHeartbeat keeps idle connections open through proxies.
const EventHeartbeat = "heartbeat"

// SSEHandler streams book-added events at GET /subscriptions/books.
type SSEHandler struct {
	hub       *Hub
	heartbeat time.Duration
}

func NewSSEHandler(hub *Hub, heartbeat time.Duration) *SSEHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &SSEHandler{hub: hub, heartbeat: heartbeat}
}

// Stream godoc
// @Summary Subscribe to book-added events
// @Produce text/event-stream
// @Router /subscriptions/books [get]
func (h *SSEHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.hub.Subscribe(ctx)
	if err != nil {
		response.ServiceUnavailable(c, "subscriptions are not available")
		return
	}
	defer h.hub.Unsubscribe(sub.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("connected", gin.H{"subscriberId": sub.ID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				if sub.Evicted() {
					// tell the client to refetch before reconnecting
					c.SSEvent("evicted", gin.H{"reason": "subscriber fell behind"})
					c.Writer.Flush()
				}
				return
			}
			c.SSEvent(event.Kind, event)
			c.Writer.Flush()

		case t := <-ticker.C:
			c.SSEvent(EventHeartbeat, gin.H{"time": t.UTC().Format(time.RFC3339)})
			c.Writer.Flush()

		case <-ctx.Done():
			log.Debug().Str("subscriber_id", sub.ID).Msg("subscription stream closed by client")
			return
		}
	}
}
