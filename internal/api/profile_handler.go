package api

import (
	"fmt"
	"net/http"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler serves the signed-in user's profile, the access check and
// admin user management.
type ProfileHandler struct {
	profileService service.ProfileService
	authService    service.AuthService
	log            *zap.Logger
}

func NewProfileHandler(profileService service.ProfileService, authService service.AuthService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, authService: authService, log: log}
}

type MeResponse struct {
	*domain.Profile
	AvatarURL       string `json:"avatarUrl,omitempty"`
	NeedsOnboarding bool   `json:"needsOnboarding"`
}

type UpdateRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

func (h *ProfileHandler) meResponse(c *gin.Context, profile *domain.Profile) (MeResponse, error) {
	url, err := h.profileService.AvatarURL(c.Request.Context(), profile)
	if err != nil {
		return MeResponse{}, err
	}
	return MeResponse{Profile: profile, AvatarURL: url, NeedsOnboarding: profile.NeedsOnboarding()}, nil
}

// GetMe godoc
// @Summary Current user's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} MeResponse
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp, err := h.meResponse(c, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body service.ProfileUpdate true "Fields to change"
// @Success 200 {object} MeResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /me [patch]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	profile, err := h.profileService.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp, err := h.meResponse(c, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckAccess godoc
// @Summary Decide whether the caller may open an app path
// @Description Anonymous callers get the unauthenticated decision.
// @Tags Access
// @Produce json
// @Param path query string true "App path, e.g. /programs"
// @Success 200 {object} access.Decision
// @Router /access [get]
func (h *ProfileHandler) CheckAccess(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		abortWithError(c, http.StatusBadRequest, "path query parameter is required")
		return
	}
	_, err := getUserIDFromContext(c)
	authenticated := err == nil
	role, _ := getUserRoleFromContext(c)
	c.JSON(http.StatusOK, access.Decide(path, authenticated, role))
}

// ListCoaches godoc
// @Summary Coaches available for assignment
// @Tags Profile
// @Produce json
// @Success 200 {array} service.CoachSummary
// @Router /coaches [get]
func (h *ProfileHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.profileService.ListCoaches(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

// ListProfiles godoc
// @Summary Admin user list
// @Tags Admin
// @Produce json
// @Param search query string false "Name or email substring"
// @Success 200 {array} domain.Profile
// @Router /admin/profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.ListProfiles(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param body body UpdateRoleRequest true "New role"
// @Success 200 {object} domain.Profile
// @Router /admin/profiles/{id}/role [patch]
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	profileID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	profile, err := h.profileService.UpdateRole(c.Request.Context(), profileID, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SendPasswordReset godoc
// @Summary Mail a password reset link to a user
// @Tags Admin
// @Param id path string true "Profile ID"
// @Success 202
// @Router /admin/profiles/{id}/password-reset [post]
func (h *ProfileHandler) SendPasswordReset(c *gin.Context) {
	profileID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), profileID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusAccepted)
}
