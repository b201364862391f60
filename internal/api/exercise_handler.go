package api

import (
	"fmt"
	"net/http"
	"strings"

	"cvos/coach-app/internal/assist"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExerciseHandler holds the exercise service and the drafting assistant.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	assistant       assist.Assistant
	log             *zap.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, assistant assist.Assistant, log *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, assistant: assistant, log: log}
}

type SuggestDetailsRequest struct {
	Name string `json:"name" binding:"required"`
}

// ExerciseRequest is the body of create and update.
type ExerciseRequest struct {
	Name                string   `json:"name" binding:"required"`
	Category            string   `json:"category"`
	Subcategory         string   `json:"subcategory"`
	ModalitySuitability []string `json:"modalitySuitability"`
	Equipment           []string `json:"equipment"`
	Aliases             []string `json:"aliases"`
	Description         string   `json:"description"`
	VideoURL            string   `json:"videoUrl" binding:"omitempty,url"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:                r.Name,
		Category:            r.Category,
		Subcategory:         r.Subcategory,
		ModalitySuitability: r.ModalitySuitability,
		Equipment:           r.Equipment,
		Aliases:             r.Aliases,
		Description:         r.Description,
		VideoURL:            r.VideoURL,
	}
}

// ListExercises godoc
// @Summary Search or list the exercise library
// @Description With q, returns at most 10 name/alias matches. Otherwise lists by category.
// @Tags Exercises
// @Produce json
// @Param q query string false "Name or alias substring"
// @Param category query string false "Category filter"
// @Success 200 {array} domain.Exercise
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	ctx := c.Request.Context()
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		found, err := h.exerciseService.Search(ctx, q)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, found)
		return
	}
	list, err := h.exerciseService.List(ctx, c.Query("category"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ResolveExercise godoc
// @Summary Find the library exercise for a name or alias
// @Tags Exercises
// @Produce json
// @Param name query string true "Exercise name or alias"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Not in the library"
// @Router /exercises/resolve [get]
func (h *ExerciseHandler) ResolveExercise(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		abortWithError(c, http.StatusBadRequest, "name query parameter is required")
		return
	}
	ex, err := h.exerciseService.Resolve(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	ex, err := h.exerciseService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

// CreateExercise godoc
// @Summary Add an exercise to the library
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 409 {object} gin.H "Name already used"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ex, err := h.exerciseService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, ex)
}

// UpdateExercise godoc
// @Summary Replace an exercise's fields
// @Tags Exercises
// @Accept json
// @Produce json
// @Param id path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ex, err := h.exerciseService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

// DeleteExercise godoc
// @Summary Remove an exercise from the library
// @Tags Exercises
// @Param id path string true "Exercise ID"
// @Success 204
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SuggestDetails godoc
// @Summary Draft category, equipment and description for a new exercise
// @Description Nothing is saved; the coach reviews the draft in the create form.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param body body SuggestDetailsRequest true "Exercise name"
// @Success 200 {object} assist.ExerciseDetails
// @Failure 502 {object} gin.H "Model call failed"
// @Failure 503 {object} gin.H "Assistant not configured"
// @Router /exercises/suggest-details [post]
func (h *ExerciseHandler) SuggestDetails(c *gin.Context) {
	var req SuggestDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		abortWithError(c, http.StatusBadRequest, "name is required")
		return
	}
	details, err := h.assistant.SuggestExerciseDetails(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
