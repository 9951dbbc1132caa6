package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/realtime"
)

// DefaultHeartbeatInterval keeps idle proxies from closing the stream.
const DefaultHeartbeatInterval = 25 * time.Second

// Subscriber hands out per-user event subscriptions.
type Subscriber interface {
	Subscribe(userID uint) *realtime.Subscription
}

type EventsController struct {
	hub       Subscriber
	heartbeat time.Duration
}

func NewEventsController(hub Subscriber, heartbeat time.Duration) *EventsController {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &EventsController{hub: hub, heartbeat: heartbeat}
}

// Stream handles GET /hubs/library as a Server-Sent Events stream of the
// caller's change notifications. It returns when the client disconnects or
// the hub shuts down.
func (ec *EventsController) Stream(c *gin.Context) {
	userID := GetUserID(c)
	sub := ec.hub.Subscribe(userID)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("connected", gin.H{"group": realtime.Group(userID)})
	c.Writer.Flush()

	log := logging.WithContext(c.Request.Context()).WithField("user_id", userID)
	log.Debug("Realtime stream opened")
	defer log.Debug("Realtime stream closed")

	ticker := time.NewTicker(ec.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			c.SSEvent(ev.Name, ev.Payload)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
