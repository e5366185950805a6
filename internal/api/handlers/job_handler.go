package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/state"
)

type JobHandler struct {
	ready *state.Ready
}

func (h *JobHandler) Get(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	j, err := s.Repos.Job.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// Retry moves a failed job back to pending so the worker picks it up again.
func (h *JobHandler) Retry(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if _, err := s.Repos.Job.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	if err := s.Repos.Job.Retry(id); err != nil {
		if errors.Is(err, job.ErrNotFailed) {
			c.JSON(http.StatusConflict, gin.H{"error": "job is not in failed state"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retry job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retrying"})
}
