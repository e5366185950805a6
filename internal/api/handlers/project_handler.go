package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/project"
	"github.com/ortrace/ortrace-go/internal/state"
)

type ProjectHandler struct {
	ready *state.Ready
}

type createProjectRequest struct {
	Name   string  `json:"name" binding:"required"`
	Domain *string `json:"domain"`
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func (h *ProjectHandler) Create(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := &project.Project{
		OwnerID:  ownerID,
		Name:     req.Name,
		Domain:   req.Domain,
		IsActive: true,
	}
	if err := s.Repos.Project.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	projects, err := s.Repos.Project.FindByOwnerID(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	p, err := s.Repos.Project.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetQuestions returns the project's analysis question configuration,
// falling back to the defaults when unset.
func (h *ProjectHandler) GetQuestions(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	p, err := s.Repos.Project.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}
	c.JSON(http.StatusOK, p.AnalysisQuestions())
}

// UpdateQuestions replaces the project's analysis question configuration.
func (h *ProjectHandler) UpdateQuestions(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	p, err := s.Repos.Project.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}

	var questions project.AnalysisQuestions
	if err := c.ShouldBindJSON(&questions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings map[string]any
	if len(p.Settings) == 0 || json.Unmarshal(p.Settings, &settings) != nil {
		settings = map[string]any{}
	}
	settings["analysis_questions"] = questions

	raw, err := json.Marshal(settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode settings"})
		return
	}
	p.Settings = datatypes.JSON(raw)

	if err := s.Repos.Project.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}
	c.JSON(http.StatusOK, p.AnalysisQuestions())
}
