package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/feed-digest/app/metrics"
)

type RefreshTask struct {
	Task
	state   *State
	metrics *metrics.Metrics
}

func NewRefreshTask(trigger Trigger, state *State, m *metrics.Metrics) *RefreshTask {
	return &RefreshTask{
		Task:    NewTask(TaskTypeRefresh, trigger),
		state:   state,
		metrics: m,
	}
}

func (t *RefreshTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.state.Pipeline().Run(ctx)
	t.state.Publish(result)

	if t.metrics != nil {
		t.metrics.ObserveRefresh(result, t.GetDuration().Seconds())
	}

	slog.Info("Task completed",
		"type", "Refresh",
		"trigger", t.Trigger,
		"source", result.Source,
		"run_id", result.RunID,
		"duration", t.GetDuration(),
		"published", result.Stats.Published)

	return nil
}
