package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ortrace/ortrace-go/internal/state"
)

// Handlers groups the HTTP handlers and the shared readiness gate.
type Handlers struct {
	ready *state.Ready

	Ticket  *TicketHandler
	Report  *ReportHandler
	Job     *JobHandler
	Auth    *AuthHandler
	Project *ProjectHandler
	Chat    *ChatHandler
}

func New(ready *state.Ready) *Handlers {
	h := &Handlers{ready: ready}
	h.Ticket = &TicketHandler{ready: ready}
	h.Report = &ReportHandler{ready: ready}
	h.Job = &JobHandler{ready: ready}
	h.Auth = &AuthHandler{ready: ready}
	h.Project = &ProjectHandler{ready: ready}
	h.Chat = &ChatHandler{ready: ready}
	return h
}

// appState returns the initialized state or writes the 503 starting-up
// response and returns nil.
func appState(c *gin.Context, ready *state.Ready) *state.AppState {
	s := ready.Get()
	if s == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service starting up"})
		return nil
	}
	return s
}
