package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/loan/job"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
	}
}

func (s *Scheduler) RegisterLoanJobs() error {
	if err := s.registerPromoteOverdueLoansJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Promote Overdue Loans (Hourly)
// ================================================
// Scans borrowed loans past their due date, flips them to overdue
// and recomputes fines. The sweep is idempotent, so an hourly cadence
// keeps overdue state fresh without double-charging.
func (s *Scheduler) registerPromoteOverdueLoansJob() error {
	payload, err := json.Marshal(job.PromoteOverdueLoansPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePromoteOverdueLoans, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register PromoteOverdueLoans job", err)
		return err
	}

	logger.Info("Registered PromoteOverdueLoans: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
