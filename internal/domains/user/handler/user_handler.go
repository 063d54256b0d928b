package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/service"
)

// =====================================================
// USER HANDLER
// =====================================================

type UserHandler struct {
	userService service.ServiceInterface
}

func NewUserHandler(userService service.ServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// getUserID extracts the authenticated user ID set by the auth middleware.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok
}

func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// mapUserError maps domain errors to HTTP status codes
func mapUserError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, model.ErrCodeUserNotFound
	case errors.Is(err, model.ErrEmailExists):
		return http.StatusConflict, model.ErrCodeEmailExists
	case errors.Is(err, model.ErrUsernameExists):
		return http.StatusConflict, model.ErrCodeUsernameExists
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, model.ErrCodeInvalidCredentials
	case errors.Is(err, model.ErrInactiveMember):
		return http.StatusForbidden, model.ErrCodeInactiveMember
	case errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized, model.ErrCodeInvalidToken
	case errors.Is(err, model.ErrSamePassword):
		return http.StatusBadRequest, model.ErrCodeSamePassword
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, model.ErrCodeUnauthorized
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// =====================================================
// AUTH ENDPOINTS
// =====================================================

// Register creates a member account
// POST /api/v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	// Step 1: Bind request body
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	// Step 2: Validate request
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// Step 3: Call service
	dto, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusCreated, dto)
}

// Login authenticates and returns a token pair
// POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// RefreshToken exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.userService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ChangePassword updates the caller's password
// PUT /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "password updated"})
}

// =====================================================
// PROFILE ENDPOINTS
// =====================================================

// GetProfile returns the caller's profile with borrow snapshot
// GET /api/v1/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	dto, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// UpdateProfile partially updates the caller's profile
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// =====================================================
// LIBRARIAN ENDPOINTS
// =====================================================

// ListUsers lists members with filters
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req model.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.userService.ListUsers(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// GetUser returns a member profile by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	dto, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// UpdateMembershipStatus activates or deactivates a membership
// PUT /api/v1/users/:id/status
func (h *UserHandler) UpdateMembershipStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.userService.UpdateMembershipStatus(c.Request.Context(), id, req.IsActiveMember)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// UpdateRole grants or revokes librarian rights
// PUT /api/v1/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.userService.UpdateRole(c.Request.Context(), id, req.IsLibrarian)
	if err != nil {
		statusCode, errCode := mapUserError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}
