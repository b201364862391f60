package api

import (
	"fmt"
	"net/http"
	"strconv"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OnboardingHandler struct {
	onboardingService service.OnboardingService
	log               *zap.Logger
}

func NewOnboardingHandler(onboardingService service.OnboardingService, log *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService, log: log}
}

type SelectRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=coach athlete"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
	FileName    string `json:"fileName"`
}

// GetState godoc
// @Summary Current onboarding step and collected answers
// @Tags Onboarding
// @Produce json
// @Success 200 {object} service.OnboardingState
// @Router /onboarding [get]
func (h *OnboardingHandler) GetState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	state, err := h.onboardingService.State(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SelectRole godoc
// @Summary Pick coach or athlete (step 0)
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param body body SelectRoleRequest true "Role"
// @Success 200 {object} service.StepResult
// @Failure 409 {object} gin.H "Role already selected"
// @Router /onboarding/role [post]
func (h *OnboardingHandler) SelectRole(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	res, err := h.onboardingService.SelectRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SubmitStep godoc
// @Summary Save one athlete step and advance
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param step path int true "Step number (1-11)"
// @Param body body service.OnboardingInput true "Answers of the step"
// @Success 200 {object} service.StepResult
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "Step mismatch"
// @Router /onboarding/steps/{step} [post]
func (h *OnboardingHandler) SubmitStep(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid step format")
		return
	}
	var req service.OnboardingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	res, err := h.onboardingService.SubmitStep(c.Request.Context(), userID, step, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Back godoc
// @Summary Return to the previous step
// @Tags Onboarding
// @Produce json
// @Success 200 {object} service.StepResult
// @Router /onboarding/back [post]
func (h *OnboardingHandler) Back(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.onboardingService.Back(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AvatarUploadURL godoc
// @Summary Presigned URL for uploading the avatar
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param body body AvatarUploadRequest true "File metadata"
// @Success 200 {object} domain.UploadTicket
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /onboarding/avatar-upload-url [post]
// @Router /me/avatar-upload-url [post]
func (h *OnboardingHandler) AvatarUploadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ticket, err := h.onboardingService.AvatarUploadURL(c.Request.Context(), userID, req.ContentType, req.FileName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
