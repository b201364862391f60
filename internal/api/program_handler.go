package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/export"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProgramHandler serves the program builder: setup, editor, validation and export.
type ProgramHandler struct {
	programService service.ProgramService
	log            *zap.Logger
}

func NewProgramHandler(programService service.ProgramService, log *zap.Logger) *ProgramHandler {
	return &ProgramHandler{programService: programService, log: log}
}

// --- DTOs ---

type SaveMesocyclesRequest struct {
	Mesocycles []service.MesocycleDraft `json:"mesocycles" binding:"required"`
}

type UpdateStatusRequest struct {
	Status domain.ProgramStatus `json:"status" binding:"required,oneof=draft active archived"`
}

// AssignClientRequest detaches the program when clientId is null.
type AssignClientRequest struct {
	ClientID *primitive.ObjectID `json:"clientId"`
}

type DuplicateTemplateRequest struct {
	Name     string              `json:"name"`
	ClientID *primitive.ObjectID `json:"clientId"`
}

type CalendarPreviewRequest struct {
	DurationWeeks int      `json:"durationWeeks"`
	StartDate     string   `json:"startDate"` // YYYY-MM-DD, optional
	WeeklyLabels  []string `json:"weeklyLabels"`
}

type CalendarPreviewResponse struct {
	DurationWeeks int                `json:"durationWeeks"`
	WeeklyLabels  []string           `json:"weeklyLabels"`
	EndDate       string             `json:"endDate,omitempty"`
	Weeks         []domain.WeekRange `json:"weeks,omitempty"`
}

// --- Handler Methods ---

// ListPrograms godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Param clientId query string false "Only programs of this client"
// @Param template query bool false "true for templates, false for assigned programs"
// @Success 200 {array} domain.Program
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	var filter service.ProgramListFilter
	if raw := c.Query("clientId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
			return
		}
		filter.ClientID = &id
	}
	if raw := c.Query("template"); raw != "" {
		isTemplate, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "template must be true or false")
			return
		}
		filter.IsTemplate = &isTemplate
	}
	programs, err := h.programService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// CreateProgram godoc
// @Summary Create a program from the setup wizard
// @Description Creates one mesocycle per week with seven days each, in draft status.
// @Tags Programs
// @Accept json
// @Produce json
// @Param program body service.CreateProgramInput true "Setup values"
// @Success 201 {object} domain.ProgramTree
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.CreateProgramInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	tree, err := h.programService.Create(c.Request.Context(), coachID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tree)
}

// CalendarPreview godoc
// @Summary Suggested weekly labels and week dates for the setup wizard
// @Tags Programs
// @Accept json
// @Produce json
// @Param body body CalendarPreviewRequest true "Duration, start date and current labels"
// @Success 200 {object} CalendarPreviewResponse
// @Router /programs/calendar-preview [post]
func (h *ProgramHandler) CalendarPreview(c *gin.Context) {
	var req CalendarPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	duration := domain.ClampDuration(req.DurationWeeks)
	resp := CalendarPreviewResponse{
		DurationWeeks: duration,
		WeeklyLabels:  domain.SuggestWeeklyLabels(duration, domain.CleanWeeklyLabels(req.WeeklyLabels)),
	}
	if strings.TrimSpace(req.StartDate) != "" {
		start, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		weeks := make([]int, duration)
		for i := range weeks {
			weeks[i] = i + 1
		}
		resp.Weeks = domain.WeekDateRanges(start, weeks)
		resp.EndDate = domain.ProgramEndDate(start, duration).Format(time.DateOnly)
	}
	c.JSON(http.StatusOK, resp)
}

// GetProgram godoc
// @Summary Full program tree
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} domain.ProgramTree
// @Router /programs/{id} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	tree, err := h.programService.GetTree(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// SaveMesocycles godoc
// @Summary Save the editor's weeks
// @Description Updates weeks and days and replaces the blocks of every submitted day.
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param body body SaveMesocyclesRequest true "Edited weeks"
// @Success 200 {object} domain.ProgramTree
// @Router /programs/{id}/mesocycles [put]
func (h *ProgramHandler) SaveMesocycles(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveMesocyclesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	tree, err := h.programService.SaveMesocycles(c.Request.Context(), id, req.Mesocycles)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// UpdateStatus godoc
// @Summary Move a program between draft, active and archived
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param body body UpdateStatusRequest true "Status"
// @Success 200 {object} domain.Program
// @Router /programs/{id}/status [patch]
func (h *ProgramHandler) UpdateStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	program, err := h.programService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// AssignClient godoc
// @Summary Assign or detach the program's client
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param body body AssignClientRequest true "Client (null to detach)"
// @Success 200 {object} domain.Program
// @Router /programs/{id}/client [put]
func (h *ProgramHandler) AssignClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	program, err := h.programService.AssignClient(c.Request.Context(), id, req.ClientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// DeleteProgram godoc
// @Summary Delete a program with all its weeks, days and blocks
// @Tags Programs
// @Param id path string true "Program ID"
// @Success 204
// @Router /programs/{id} [delete]
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.programService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateTemplate godoc
// @Summary Copy a template into a new draft program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param body body DuplicateTemplateRequest true "New name and optional client"
// @Success 201 {object} domain.ProgramTree
// @Failure 400 {object} gin.H "Not a template"
// @Router /programs/{id}/duplicate [post]
func (h *ProgramHandler) DuplicateTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req DuplicateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	tree, err := h.programService.DuplicateTemplate(c.Request.Context(), coachID, id, req.Name, req.ClientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tree)
}

// ValidateProgram godoc
// @Summary List incomplete blocks
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} service.ProgramValidation
// @Router /programs/{id}/validation [get]
func (h *ProgramHandler) ValidateProgram(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.programService.ValidateProgram(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportProgram godoc
// @Summary Printable program
// @Tags Programs
// @Produce json,text/markdown,text/html
// @Param id path string true "Program ID"
// @Param format query string false "json (default), markdown or html"
// @Success 200
// @Router /programs/{id}/export [get]
func (h *ProgramHandler) ExportProgram(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.programService.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writeExport(c, h.log, doc)
}

// DashboardStats godoc
// @Summary Coach home counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} service.DashboardStats
// @Router /dashboard/stats [get]
func (h *ProgramHandler) DashboardStats(c *gin.Context) {
	stats, err := h.programService.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// writeExport renders doc in the format named by the query string.
func writeExport(c *gin.Context, log *zap.Logger, doc *export.Document) {
	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		c.JSON(http.StatusOK, doc)
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.RenderMarkdown(doc)))
	case "html":
		page, err := export.RenderHTML(doc)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	default:
		abortWithError(c, http.StatusBadRequest, "format must be json, markdown or html")
	}
}
