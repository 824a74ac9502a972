package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRefresh     TaskType = "refresh"
	TaskTypeReloadRules TaskType = "reload_rules"
)

// Trigger records what asked for a task.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerAPI      Trigger = "api"
)

// retryLimits caps re-execution per task type. A refresh never retries: the
// fetcher has its own bounded retry and a failed source degrades to an empty
// result. A reload retries because a rule file may be mid-write.
var retryLimits = map[TaskType]int{
	TaskTypeRefresh:     0,
	TaskTypeReloadRules: 3,
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTrigger() Trigger
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every digest task. StartedAt is reset
// on each attempt, so GetDuration covers the current execution only.
type Task struct {
	ID         string
	Type       TaskType
	Trigger    Trigger
	RetryCount int
	MaxRetries int
	StartedAt  time.Time
}

func NewTask(taskType TaskType, trigger Trigger) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Trigger:    trigger,
		MaxRetries: retryLimits[taskType],
	}
}

func (t *Task) GetID() string { return t.ID }
func (t *Task) GetType() TaskType { return t.Type }
func (t *Task) GetTrigger() Trigger { return t.Trigger }
func (t *Task) GetRetryCount() int { return t.RetryCount }
func (t *Task) GetMaxRetries() int { return t.MaxRetries }
func (t *Task) IncrementRetryCount() { t.RetryCount++ }
func (t *Task) CanRetry() bool { return t.RetryCount < t.MaxRetries }
func (t *Task) Start() { t.StartedAt = time.Now() }

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}
