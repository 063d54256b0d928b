package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/service"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared"
)

// =====================================================
// LOAN HANDLER
// =====================================================

type LoanHandler struct {
	loanService service.ServiceInterface
}

func NewLoanHandler(loanService service.ServiceInterface) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// getActor extracts the authenticated caller set by the auth middleware.
func getActor(c *gin.Context) (service.Actor, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return service.Actor{}, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return service.Actor{}, false
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	return service.Actor{
		UserID:      userID,
		IsLibrarian: roleStr == shared.RoleLibrarian,
	}, true
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

// mapLoanError maps domain errors to HTTP status codes
func mapLoanError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrLoanNotFound):
		return http.StatusNotFound, model.ErrCodeLoanNotFound
	case errors.Is(err, bookmodel.ErrBookNotFound):
		return http.StatusNotFound, bookmodel.ErrCodeBookNotFound
	case errors.Is(err, usermodel.ErrUserNotFound):
		return http.StatusNotFound, usermodel.ErrCodeUserNotFound
	case errors.Is(err, model.ErrBorrowLimitExceeded):
		return http.StatusUnprocessableEntity, model.ErrCodeBorrowLimitExceeded
	case errors.Is(err, model.ErrBookUnavailable):
		return http.StatusConflict, model.ErrCodeBookUnavailable
	case errors.Is(err, model.ErrDuplicateActiveLoan):
		return http.StatusConflict, model.ErrCodeDuplicateActiveLoan
	case errors.Is(err, model.ErrNotRenewable):
		return http.StatusUnprocessableEntity, model.ErrCodeNotRenewable
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusUnprocessableEntity, model.ErrCodeInvalidState
	case errors.Is(err, model.ErrBorrowConflict):
		return http.StatusConflict, model.ErrCodeBorrowConflict
	case errors.Is(err, model.ErrMemberNotEligible):
		return http.StatusForbidden, model.ErrCodeMemberNotEligible
	case errors.Is(err, model.ErrNoFineDue):
		return http.StatusUnprocessableEntity, model.ErrCodeNoFineDue
	case errors.Is(err, usermodel.ErrUnauthorized):
		return http.StatusForbidden, usermodel.ErrCodeUnauthorized
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func parseLoanID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return uuid.Nil, false
	}
	return id, true
}

// =====================================================
// LIFECYCLE ENDPOINTS
// =====================================================

// BorrowBook checks a copy out
// POST /api/v1/loans/borrow
func (h *LoanHandler) BorrowBook(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	dto, err := h.loanService.BorrowBook(c.Request.Context(), actor, req)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusCreated, dto)
}

// ReturnLoan checks a copy back in
// POST /api/v1/loans/:id/return
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseLoanID(c)
	if !ok {
		return
	}

	var req model.ReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	dto, err := h.loanService.ReturnLoan(c.Request.Context(), actor, id, req)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// RenewLoan extends the due date
// POST /api/v1/loans/:id/renew
func (h *LoanHandler) RenewLoan(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseLoanID(c)
	if !ok {
		return
	}

	dto, err := h.loanService.RenewLoan(c.Request.Context(), actor, id)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// =====================================================
// QUERY ENDPOINTS
// =====================================================

// GetLoan returns one loan, owner or librarian only
// GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseLoanID(c)
	if !ok {
		return
	}

	dto, err := h.loanService.GetLoan(c.Request.Context(), actor, id)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// MyLoans lists the caller's loans
// GET /api/v1/loans/my?current=true
func (h *LoanHandler) MyLoans(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	current, _ := strconv.ParseBool(c.DefaultQuery("current", "false"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.loanService.MyLoans(c.Request.Context(), actor.UserID, current, page, limit)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ListLoans lists every loan with filters (librarian)
// GET /api/v1/loans
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var req model.ListLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.loanService.ListLoans(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// OverdueLoans lists loans past their due date (librarian)
// GET /api/v1/loans/overdue
func (h *LoanHandler) OverdueLoans(c *gin.Context) {
	var req model.ListLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.Overdue = true

	resp, err := h.loanService.ListLoans(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// PayFine marks a fine as collected (librarian)
// POST /api/v1/loans/:id/fine/pay
func (h *LoanHandler) PayFine(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}

	dto, err := h.loanService.PayFine(c.Request.Context(), id)
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, dto)
}

// Statistics summarizes circulation (librarian)
// GET /api/v1/loans/statistics
func (h *LoanHandler) Statistics(c *gin.Context) {
	stats, err := h.loanService.Statistics(c.Request.Context())
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, stats)
}

// PromoteOverdue runs the overdue sweep on demand (librarian).
// The scheduled worker runs the same sweep hourly; both are idempotent.
// POST /api/v1/loans/promote-overdue
func (h *LoanHandler) PromoteOverdue(c *gin.Context) {
	promoted, err := h.loanService.PromoteOverdueLoans(c.Request.Context())
	if err != nil {
		statusCode, errCode := mapLoanError(err)
		respondError(c, statusCode, errCode, err.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"loans_promoted": promoted})
}
