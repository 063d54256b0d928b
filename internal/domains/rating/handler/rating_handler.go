package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/rating/model"
	"library-backend/internal/domains/rating/service"
)

// =====================================================
// RATING HANDLER
// =====================================================

type RatingHandler struct {
	ratingService service.ServiceInterface
}

func NewRatingHandler(ratingService service.ServiceInterface) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

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

// mapRatingError maps domain errors to HTTP status codes
func mapRatingError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrRatingNotFound):
		return http.StatusNotFound, model.ErrCodeRatingNotFound
	case errors.Is(err, bookmodel.ErrBookNotFound):
		return http.StatusNotFound, bookmodel.ErrCodeBookNotFound
	case errors.Is(err, model.ErrInvalidScore):
		return http.StatusBadRequest, model.ErrCodeInvalidScore
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden, model.ErrCodeUnauthorized
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func parseBookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid book ID")
		return uuid.Nil, false
	}
	return id, true
}

// =====================================================
// ENDPOINTS
// =====================================================

// RateBook creates or replaces the caller's rating
// POST /api/v1/books/:id/ratings
func (h *RatingHandler) RateBook(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.ratingService.RateBook(c.Request.Context(), userID, bookID, req)
	if err != nil {
		statusCode, errCode := mapRatingError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// DeleteRating removes the caller's rating
// DELETE /api/v1/books/:id/ratings
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), userID, bookID); err != nil {
		statusCode, errCode := mapRatingError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "rating deleted"})
}

// GetMyRating returns the caller's rating for a title
// GET /api/v1/books/:id/ratings/me
func (h *RatingHandler) GetMyRating(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	dto, err := h.ratingService.GetMyRating(c.Request.Context(), userID, bookID)
	if err != nil {
		statusCode, errCode := mapRatingError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// ListRatings pages through a title's ratings
// GET /api/v1/books/:id/ratings
func (h *RatingHandler) ListRatings(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.ListRatingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.ratingService.ListRatings(c.Request.Context(), bookID, &req)
	if err != nil {
		statusCode, errCode := mapRatingError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}
