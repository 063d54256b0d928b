package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/loan/service"
	"library-backend/pkg/logger"
)

// PromoteOverdueLoansPayload is empty for the scheduled sweep; a date
// can be supplied when replaying a missed run manually.
type PromoteOverdueLoansPayload struct {
	Date time.Time `json:"date,omitempty"`
}

type PromoteOverdueLoansHandler struct {
	loanService service.ServiceInterface
}

func NewPromoteOverdueLoansHandler(loanService service.ServiceInterface) *PromoteOverdueLoansHandler {
	return &PromoteOverdueLoansHandler{
		loanService: loanService,
	}
}

func (h *PromoteOverdueLoansHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload PromoteOverdueLoansPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	started := time.Now()
	log.Info().Msg("Starting overdue loan sweep")

	count, err := h.loanService.PromoteOverdueLoans(ctx)
	if err != nil {
		logger.Error("Overdue loan sweep failed due to ", err)
		return err
	}

	log.Info().
		Int("loans_promoted", count).
		Dur("took", time.Since(started)).
		Msg("Overdue loan sweep finished")

	return nil
}
