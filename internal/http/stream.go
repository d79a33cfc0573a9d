package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/aquacred-registry/internal/display"
	"github.com/nurpe/aquacred-registry/internal/model"
)

const keepAliveInterval = 15 * time.Second

// streamProjects pushes every newly registered project to the client as a
// server-sent "project" event until the client disconnects.
func (h *Handler) streamProjects(c *gin.Context) {
	ctx := c.Request.Context()

	projects := make(chan model.Project, 16)
	sub, err := h.registry.ListenForProjectRegistrations(ctx, func(p model.Project) {
		select {
		case projects <- p:
		case <-ctx.Done():
		}
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer sub.Unsubscribe()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"network": h.registry.Network()})
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil && !errors.Is(err, context.Canceled) {
				h.log.Warn().Err(err).Msg("project subscription ended")
				c.SSEvent("error", gin.H{"message": err.Error()})
				flusher.Flush()
			}
			return
		case p := <-projects:
			c.SSEvent("project", display.ProjectViewOf(p))
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
