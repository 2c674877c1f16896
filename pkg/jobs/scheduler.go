package jobs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler enqueues jobs on cron schedules. Specs use the standard five
// field syntax or descriptors such as @daily and @every 1h.
type Scheduler struct {
	cron   *cron.Cron
	queue  *Queue
	logger *zap.Logger
}

// NewScheduler constructs a scheduler feeding queue.
func NewScheduler(queue *Queue, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), queue: queue, logger: logger}
}

// Every registers jobType to be enqueued on spec.
func (s *Scheduler) Every(spec, jobType string) error {
	_, err := s.cron.AddFunc(spec, func() {
		job := Job{ID: uuid.NewString(), Type: jobType, Trigger: "schedule"}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("scheduled enqueue failed", zap.String("type", jobType), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s with %q: %w", jobType, spec, err)
	}
	s.logger.Info("job scheduled", zap.String("type", jobType), zap.String("spec", spec))
	return nil
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedules and waits for running callbacks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
