package workers

import (
	"context"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/services"

	"gorm.io/gorm"
)

type JobWorker struct {
	db       *gorm.DB
	jobs     services.JobService
	interval time.Duration
	now      func() time.Time
}

func NewJobWorker(db *gorm.DB, jobs services.JobService, interval time.Duration) *JobWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &JobWorker{
		db:       db,
		jobs:     jobs,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает автозакрытие вакансий с прошедшим дедлайном
func (w *JobWorker) Start(ctx context.Context) {
	go every(ctx, "job_expiry", w.interval, w.CloseExpired)
}

func (w *JobWorker) CloseExpired(ctx context.Context) {
	closed, err := w.jobs.CloseExpiredJobs(w.db.WithContext(ctx), w.now())
	if err != nil || closed > 0 {
		logger.WorkerLog("job_expiry", "close_expired", err, "closed", closed)
	}
}

// every вызывает fn на каждом тике, пока не отменен ctx
func every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", "worker", name)
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
