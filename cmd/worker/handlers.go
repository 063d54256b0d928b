package main

import (
	"github.com/hibiken/asynq"

	loanJob "library-backend/internal/domains/loan/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Circulation handlers
	promoteOverdueLoans *loanJob.PromoteOverdueLoansHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		promoteOverdueLoans: loanJob.NewPromoteOverdueLoansHandler(c.LoanService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Circulation tasks
	mux.HandleFunc(shared.TypePromoteOverdueLoans, h.promoteOverdueLoans.ProcessTask)
}
