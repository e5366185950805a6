package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/client"
	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/domain/ticket"
	"github.com/ortrace/ortrace-go/internal/state"
	"github.com/ortrace/ortrace-go/internal/storage"
)

// maxUploadBytes caps widget video uploads. The analysis client enforces
// its own inline ceiling separately.
const maxUploadBytes = 50 * 1024 * 1024

type TicketHandler struct {
	ready *state.Ready
}

type createTicketRequest struct {
	ProjectID       *uuid.UUID     `json:"project_id"`
	CustomerID      uuid.UUID      `json:"customer_id" binding:"required"`
	FeedbackType    *string        `json:"feedback_type"`
	TaskDescription *string        `json:"task_description"`
	SubmitterEmail  *string        `json:"submitter_email"`
	SubmitterName   *string        `json:"submitter_name"`
	PageURL         *string        `json:"page_url"`
	BrowserInfo     map[string]any `json:"browser_info"`
	DurationSeconds *int           `json:"duration_seconds"`
}

type updateTicketRequest struct {
	TicketStatus *ticket.TicketStatus `json:"ticket_status"`
	Priority     *ticket.Priority     `json:"priority"`
	Category     *string              `json:"category"`
	AssigneeID   *uuid.UUID           `json:"assignee_id"`
	DueDate      *time.Time           `json:"due_date"`
}

// List returns tickets, optionally filtered by query parameters.
func (h *TicketHandler) List(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	var filter ticket.ListFilter
	if v := c.Query("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		filter.ProjectID = &id
	}
	if v := c.Query("ticket_status"); v != "" {
		st := ticket.TicketStatus(v)
		filter.TicketStatus = &st
	}
	if v := c.Query("feedback_type"); v != "" {
		ft := ticket.FeedbackType(v)
		filter.FeedbackType = &ft
	}
	if v := c.Query("priority"); v != "" {
		p := ticket.Priority(v)
		filter.Priority = &p
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee_id"})
			return
		}
		filter.AssigneeID = &id
	}

	tickets, err := s.Repos.Ticket.FindAll(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

func (h *TicketHandler) Get(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	t, err := s.Repos.Ticket.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}

	var videoURL *string
	if t.VideoStoragePath != nil {
		if u, err := s.Storage.SignedURL(c.Request.Context(), *t.VideoStoragePath, time.Hour); err == nil {
			videoURL = &u
		}
	}
	c.JSON(http.StatusOK, struct {
		*ticket.FeedbackTicket
		VideoURL *string `json:"video_url"`
	}{t, videoURL})
}

// GetVideo streams the stored recording for a ticket.
func (h *TicketHandler) GetVideo(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	t, err := s.Repos.Ticket.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}
	if t.VideoStoragePath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	data, err := s.Storage.Get(c.Request.Context(), *t.VideoStoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download video"})
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, client.MimeTypeForPath(*t.VideoStoragePath), data)
}

// Overview returns aggregate ticket counts for the dashboard.
func (h *TicketHandler) Overview(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	stats, err := s.Repos.Ticket.Overview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute overview"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Create registers a new ticket from the widget. The video arrives in a
// separate upload call.
func (h *TicketHandler) Create(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &ticket.FeedbackTicket{
		ProjectID:       req.ProjectID,
		CustomerID:      req.CustomerID,
		TaskDescription: req.TaskDescription,
		SubmitterEmail:  req.SubmitterEmail,
		SubmitterName:   req.SubmitterName,
		PageURL:         req.PageURL,
		DurationSeconds: req.DurationSeconds,
		Status:          ticket.ProcessingPending,
		FeedbackType:    ticket.TypeBug,
		TicketStatus:    ticket.StatusOpen,
		Priority:        ticket.PriorityNeutral,
	}
	if req.FeedbackType != nil {
		switch ft := ticket.FeedbackType(*req.FeedbackType); ft {
		case ticket.TypeBug, ticket.TypeFeedback, ticket.TypeIdea:
			t.FeedbackType = ft
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback_type"})
			return
		}
	}
	if req.BrowserInfo != nil {
		raw, err := json.Marshal(req.BrowserInfo)
		if err == nil {
			t.BrowserInfo = datatypes.JSON(raw)
		}
	}

	if err := s.Repos.Ticket.Create(t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UploadVideo stores the recording and enqueues the analysis job. The
// ticket moves to processing as soon as the job exists.
func (h *TicketHandler) UploadVideo(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	t, err := s.Repos.Ticket.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}

	file, header, err := c.Request.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video exceeds maximum upload size"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video exceeds maximum upload size"})
		return
	}

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "recording.mp4"
	}
	storagePath := fmt.Sprintf("recordings/%s/%s", t.ID, filename)

	if _, err := s.Storage.Put(c.Request.Context(), storagePath, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store video"})
		return
	}

	size := int64(len(data))
	now := time.Now()
	t.VideoStoragePath = &storagePath
	t.VideoSizeBytes = &size
	t.RecordedAt = &now
	t.Status = ticket.Processing

	jobID, err := s.Repos.Job.Enqueue(job.CreateJobRequest{
		VideoStoragePath: storagePath,
		VideoSizeBytes:   size,
		TicketID:         &t.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue analysis"})
		return
	}
	t.AnalysisJobID = &jobID

	if err := s.Repos.Ticket.Update(t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t, "analysis_job_id": jobID})
}

// Update applies triage changes from the dashboard.
func (h *TicketHandler) Update(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	t, err := s.Repos.Ticket.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}

	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.TicketStatus != nil {
		t.TicketStatus = *req.TicketStatus
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Category != nil {
		t.Category = req.Category
	}
	if req.AssigneeID != nil {
		t.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}

	if err := s.Repos.Ticket.Update(t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
		return
	}
	c.JSON(http.StatusOK, t)
}

type closeTicketRequest struct {
	Reason ticket.ClosedReason `json:"reason" binding:"required"`
}

func (h *TicketHandler) Close(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req closeTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason != ticket.ClosedResolved && req.Reason != ticket.ClosedNotRelevant {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid close reason"})
		return
	}

	if err := s.Repos.Ticket.Close(id, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// RetryAnalysis resets the ticket's failed analysis job back to pending.
func (h *TicketHandler) RetryAnalysis(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	j, err := s.Repos.Job.GetByTicketID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analysis job for ticket"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	if err := s.Repos.Job.Retry(j.ID); err != nil {
		if errors.Is(err, job.ErrNotFailed) {
			c.JSON(http.StatusConflict, gin.H{"error": "analysis job is not in failed state"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retry job"})
		return
	}
	if err := s.Repos.Ticket.MarkProcessing(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retrying", "job_id": j.ID})
}
