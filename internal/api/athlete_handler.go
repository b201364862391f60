package api

import (
	"net/http"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AthleteHandler is the athlete's read-only view of their own data.
type AthleteHandler struct {
	clientService  service.ClientService
	programService service.ProgramService
	log            *zap.Logger
}

func NewAthleteHandler(clientService service.ClientService, programService service.ProgramService, log *zap.Logger) *AthleteHandler {
	return &AthleteHandler{clientService: clientService, programService: programService, log: log}
}

// GetMyClient godoc
// @Summary The client record linked to the athlete
// @Tags Athlete
// @Produce json
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "No client record yet"
// @Router /athlete/client [get]
func (h *AthleteHandler) GetMyClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	client, err := h.clientService.MyClient(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// GetMyCoach godoc
// @Summary The athlete's coach
// @Tags Athlete
// @Produce json
// @Success 200 {object} service.CoachSummary
// @Router /athlete/coach [get]
func (h *AthleteHandler) GetMyCoach(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	coach, err := h.clientService.MyCoach(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coach)
}

// GetMyGym godoc
// @Summary The gym the athlete trains at
// @Tags Athlete
// @Produce json
// @Success 200 {object} domain.Client
// @Router /athlete/gym [get]
func (h *AthleteHandler) GetMyGym(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	gym, err := h.clientService.MyGym(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

// GetMyPrograms godoc
// @Summary Programs assigned to the athlete
// @Tags Athlete
// @Produce json
// @Success 200 {array} domain.Program
// @Router /athlete/programs [get]
func (h *AthleteHandler) GetMyPrograms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programs, err := h.clientService.MyPrograms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// ownedTree loads a program only if it is assigned to the caller's client
// record. Other programs are reported as not found.
func (h *AthleteHandler) ownedTree(c *gin.Context) (*domain.ProgramTree, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	programID, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	client, err := h.clientService.MyClient(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	tree, err := h.programService.GetTree(ctx, programID)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	if tree.IsTemplate || tree.ClientID == nil || *tree.ClientID != client.ID {
		respondError(c, h.log, service.ErrProgramNotFound)
		return nil, false
	}
	return tree, true
}

// GetMyProgram godoc
// @Summary One of the athlete's programs, fully loaded
// @Tags Athlete
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} domain.ProgramTree
// @Failure 404 {object} gin.H "Not found or not assigned to the athlete"
// @Router /athlete/programs/{id} [get]
func (h *AthleteHandler) GetMyProgram(c *gin.Context) {
	tree, ok := h.ownedTree(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tree)
}

// ExportMyProgram godoc
// @Summary Printable version of one of the athlete's programs
// @Tags Athlete
// @Param id path string true "Program ID"
// @Param format query string false "json (default), markdown or html"
// @Success 200
// @Router /athlete/programs/{id}/export [get]
func (h *AthleteHandler) ExportMyProgram(c *gin.Context) {
	tree, ok := h.ownedTree(c)
	if !ok {
		return
	}
	doc, err := h.programService.Export(c.Request.Context(), tree.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writeExport(c, h.log, doc)
}
