package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/tracker"
)

type ProjectHandler struct {
	svc    *tracker.Service
	logger *zap.Logger
}

func NewProjectHandler(svc *tracker.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	projects, err := h.svc.ListProjects(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "Project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	project, err := h.svc.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, h.logger, err, "Project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), userID, projectID, req.Title, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "Project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.logger, err, "Project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
