package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
)

// =====================================================
// BOOK HANDLER
// =====================================================

type BookHandler struct {
	bookService service.ServiceInterface
}

func NewBookHandler(bookService service.ServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
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

// mapBookError maps domain errors to HTTP status codes
func mapBookError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrBookNotFound):
		return http.StatusNotFound, model.ErrCodeBookNotFound
	case errors.Is(err, model.ErrISBNExists):
		return http.StatusConflict, model.ErrCodeISBNExists
	case errors.Is(err, model.ErrBookUnavailable):
		return http.StatusConflict, model.ErrCodeBookUnavailable
	case errors.Is(err, model.ErrCapacityViolation):
		return http.StatusUnprocessableEntity, model.ErrCodeCapacityViolation
	case errors.Is(err, model.ErrBookHasLoans):
		return http.StatusConflict, model.ErrCodeBookHasLoans
	case errors.Is(err, model.ErrInvalidImage):
		return http.StatusBadRequest, model.ErrCodeInvalidImage
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, model.ErrCodeStorageUnavailable
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
// PUBLIC ENDPOINTS
// =====================================================

// ListBooks lists the catalog with filters
// GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req model.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.bookService.ListBooks(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// GetBook returns a title with availability and rating aggregates
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	dto, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// PopularBooks ranks titles by loan count
// GET /api/v1/books/popular
func (h *BookHandler) PopularBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	dtos, err := h.bookService.PopularBooks(c.Request.Context(), limit)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dtos)
}

// TopRatedBooks ranks titles by average rating
// GET /api/v1/books/top-rated
func (h *BookHandler) TopRatedBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	dtos, err := h.bookService.TopRatedBooks(c.Request.Context(), limit)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dtos)
}

// =====================================================
// LIBRARIAN ENDPOINTS
// =====================================================

// CreateBook adds a title to the catalog
// POST /api/v1/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	dto, err := h.bookService.CreateBook(c.Request.Context(), req)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusCreated, dto)
}

// UpdateBook partially updates catalog metadata
// PUT /api/v1/books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.bookService.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// UpdateCapacity changes the number of owned copies
// PUT /api/v1/books/:id/capacity
func (h *BookHandler) UpdateCapacity(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.bookService.UpdateCapacity(c.Request.Context(), id, req)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// UpdateStatus moves a title between circulation states
// PUT /api/v1/books/:id/status
func (h *BookHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.bookService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// DeleteBook removes a title without loan history
// DELETE /api/v1/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "book deleted"})
}

// UploadCover attaches a cover image (multipart field "cover")
// POST /api/v1/books/:id/cover
func (h *BookHandler) UploadCover(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "cover file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read cover file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read cover file")
		return
	}

	dto, err := h.bookService.UploadCover(c.Request.Context(), id, data)
	if err != nil {
		statusCode, errCode := mapBookError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}
