package api

import (
	"fmt"
	"net/http"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ClientHandler manages athletes and gyms on behalf of coaches and admins.
type ClientHandler struct {
	clientService service.ClientService
	log           *zap.Logger
}

func NewClientHandler(clientService service.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, log: log}
}

type AssignCoachRequest struct {
	CoachID primitive.ObjectID `json:"coachId" binding:"required"`
}

// ListClients godoc
// @Summary List athletes or gyms
// @Tags Clients
// @Produce json
// @Param type query string false "athlete or gym"
// @Success 200 {array} domain.Client
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clientType := domain.ClientType(c.Query("type"))
	if clientType != "" && !clientType.Valid() {
		abortWithError(c, http.StatusBadRequest, "type must be athlete or gym")
		return
	}
	clients, err := h.clientService.List(c.Request.Context(), clientType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get one athlete or gym
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.Client
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CreateClient godoc
// @Summary Create an athlete or gym
// @Description The caller becomes the coach unless coachId is given.
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body service.ClientInput true "Client details"
// @Success 201 {object} domain.Client
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), coachID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient godoc
// @Summary Update an athlete or gym
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param client body service.ClientInput true "Client details"
// @Success 200 {object} domain.Client
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete an athlete or gym
// @Description Programs assigned to the client are kept and detached.
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignCoach godoc
// @Summary Reassign a client to another coach
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body AssignCoachRequest true "Coach"
// @Success 200 {object} domain.Client
// @Router /clients/{id}/coach [put]
func (h *ClientHandler) AssignCoach(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := h.clientService.AssignCoach(c.Request.Context(), id, req.CoachID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateBenchmarks godoc
// @Summary Record 1RMs and benchmark times
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body service.Benchmarks true "Benchmarks"
// @Success 200 {object} domain.Client
// @Router /clients/{id}/benchmarks [put]
func (h *ClientHandler) UpdateBenchmarks(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req service.Benchmarks
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := h.clientService.UpdateBenchmarks(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
