package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// ssePingInterval spaces the keep-alive events on /events.
const ssePingInterval = 15 * time.Second

// handleEvents serves the Server-Sent-Events surface: one initial endpoint
// event advertising the REST chat endpoint, then periodic pings until the
// client disconnects. Chat itself stays on the REST surface; the stream only
// signals liveness.
func (s *HTTPServer) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("endpoint", gin.H{"chat": "/chat", "tools": "/tools"})
	c.Writer.Flush()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case t := <-ticker.C:
			c.SSEvent("ping", gin.H{"time": t.UTC().Format(time.RFC3339)})
			return true
		}
	})
}
