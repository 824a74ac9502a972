package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/feed-digest/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	defaultWorkerCount = 2
	taskTimeout        = 5 * time.Minute
	maxRetryDelay      = 30 * time.Second
)

type Scheduler struct {
	state          *State
	metrics        *metrics.Metrics
	source         string
	categoriesFile string
	authorsFile    string
	interval       time.Duration
	workerCount    int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

type SchedulerConfig struct {
	Source         string
	CategoriesFile string
	AuthorsFile    string
	Interval       time.Duration
	WorkerCount    int
}

func NewScheduler(state *State, m *metrics.Metrics, config SchedulerConfig) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}

	return &Scheduler{
		state:          state,
		metrics:        m,
		source:         config.Source,
		categoriesFile: config.CategoriesFile,
		authorsFile:    config.AuthorsFile,
		interval:       config.Interval,
		workerCount:    workerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 32),
	}
}

// Start launches the workers and the periodic refresh. A zero interval
// disables the ticker; tasks can still be enqueued on demand.
func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.enqueueRefresh(TriggerStartup)

		if s.interval <= 0 {
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRefresh(TriggerSchedule)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) NewRefreshTask(trigger Trigger) *RefreshTask {
	return NewRefreshTask(trigger, s.state, s.metrics)
}

func (s *Scheduler) NewReloadRulesTask(trigger Trigger) *ReloadRulesTask {
	return NewReloadRulesTask(trigger, s.categoriesFile, s.authorsFile, s.state, s.metrics)
}

func (s *Scheduler) enqueueRefresh(trigger Trigger) {
	if err := s.EnqueueTask(s.NewRefreshTask(trigger)); err != nil {
		slog.Warn("Failed to enqueue RefreshTask", "source", s.source, "trigger", trigger, "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := min(time.Duration(1<<uint(task.GetRetryCount()-1))*time.Second, maxRetryDelay)

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "trigger", task.GetTrigger(), "source", s.source, "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
