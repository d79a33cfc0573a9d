package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/aquacred-registry/internal/display"
	"github.com/nurpe/aquacred-registry/internal/http/middleware"
	"github.com/nurpe/aquacred-registry/internal/model"
	"github.com/nurpe/aquacred-registry/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type Handler struct {
	registry    *service.RegistryService
	submissions *service.SubmissionService
	reports     *service.ReportService
	log         zerolog.Logger
}

func NewHandler(registry *service.RegistryService, submissions *service.SubmissionService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{
		registry:    registry,
		submissions: submissions,
		reports:     reports,
		log:         log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")
	api.GET("/submit-project", h.listRegistry)
	api.GET("/projects", h.listProjects)
	api.GET("/projects/count", h.projectCount)
	api.GET("/projects/export", h.exportProjects)
	api.GET("/projects/stream", h.streamProjects)
	api.GET("/projects/:id", h.getProject)
	api.GET("/projects/:id/certificate", h.projectCertificate)
	api.GET("/projects/:id/raw", h.getProjectRecord)
	api.GET("/project-types", h.projectTypes)
	api.GET("/dashboard/summary", h.dashboardSummary)
	api.GET("/transactions/:hash", h.verifyTransaction)

	protected := api.Group("")
	protected.Use(authMiddleware)
	protected.POST("/submit-project", h.submitProject)
	protected.GET("/submissions", h.listSubmissions)
}

type submitProjectRequest struct {
	ProjectName      string `form:"projectName" json:"projectName"`
	Location         string `form:"location" json:"location"`
	ImplementingBody string `form:"implementingBody" json:"implementingBody"`
	AreaHectares     string `form:"areaHectares" json:"areaHectares"`
	StartDate        string `form:"startDate" json:"startDate"`
	ProjectType      string `form:"projectType" json:"projectType"`
}

func (h *Handler) submitProject(c *gin.Context) {
	var req submitProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	area, err := parseArea(req.AreaHectares)
	if err != nil {
		h.handleError(c, err)
		return
	}

	registration := model.Registration{
		ProjectName:      req.ProjectName,
		Location:         req.Location,
		ImplementingBody: req.ImplementingBody,
		AreaHectares:     area,
		StartDate:        req.StartDate,
		ProjectType:      req.ProjectType,
	}

	hash, err := h.submissions.Submit(c.Request.Context(), middleware.PrincipalFrom(c), registration)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"message":         "Project registered successfully on the blockchain!",
		"transactionHash": hash,
		"explorerUrl":     display.GetEtherscanURL(hash, h.registry.Network()),
		"projectData": gin.H{
			"projectName":      registration.ProjectName,
			"location":         registration.Location,
			"implementingBody": registration.ImplementingBody,
			"areaHectares":     strconv.FormatUint(registration.AreaHectares, 10),
			"startDate":        registration.StartDate,
			"projectType":      registration.ProjectType,
		},
	})
}

func (h *Handler) listRegistry(c *gin.Context) {
	projects, err := h.registry.GetAllProjects(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"projects":   projects,
			"totalCount": len(projects),
		},
	})
}

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.registry.GetAllProjects(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	views := display.ProjectViews(display.FilterProjects(projects, c.Query("search")))
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": views})
}

func (h *Handler) projectCount(c *gin.Context) {
	count, err := h.registry.GetProjectCount(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	counter, err := h.registry.GetProjectCounter(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"count": count, "counter": counter}})
}

// getProjectRecord serves the project as stored in the public projects mapping.
func (h *Handler) getProjectRecord(c *gin.Context) {
	id, err := parseProjectID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	project, err := h.registry.GetProjectRecord(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": project})
}

type projectTypeOption struct {
	Name              string  `json:"name"`
	SequestrationRate float64 `json:"sequestrationRate"`
}

func (h *Handler) projectTypes(c *gin.Context) {
	types := display.ProjectTypes()
	options := make([]projectTypeOption, 0, len(types))
	for _, name := range types {
		options = append(options, projectTypeOption{Name: name, SequestrationRate: display.SequestrationRate(name)})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": options})
}

func (h *Handler) getProject(c *gin.Context) {
	id, err := parseProjectID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	project, err := h.registry.GetProject(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"project": project,
			"view":    display.ProjectViewOf(project),
		},
	})
}

func (h *Handler) exportProjects(c *gin.Context) {
	result, err := h.reports.ExportProjects(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) projectCertificate(c *gin.Context) {
	id, err := parseProjectID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.reports.ProjectCertificate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, pdfContentType, result.Content)
}

func (h *Handler) dashboardSummary(c *gin.Context) {
	projects, err := h.registry.GetAllProjects(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": display.Summarize(projects)})
}

func (h *Handler) verifyTransaction(c *gin.Context) {
	status, err := h.registry.VerifyTransaction(c.Request.Context(), c.Param("hash"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": status})
}

func (h *Handler) listSubmissions(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			errorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.submissions.ListSubmissions(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": items})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	logError := func(msg string) {
		h.log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c.Request.Context())).
			Str("path", c.FullPath()).
			Msg(msg)
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConfiguration):
		logError("registry not configured")
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrChain):
		logError("blockchain call failed")
		errorResponse(c, http.StatusBadGateway, err.Error())
	default:
		logError("request failed")
		errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// parseArea treats an empty value as missing and leaves that to validation.
func parseArea(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	area, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: areaHectares must be a positive whole number", service.ErrValidation)
	}
	return area, nil
}

func parseProjectID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid project id %q", service.ErrValidation, raw)
	}
	return id, nil
}
