package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/feed-digest/app/metrics"
	"github.com/lysyi3m/feed-digest/app/rules"
)

type ReloadRulesTask struct {
	Task
	categoriesFile string
	authorsFile    string
	state          *State
	metrics        *metrics.Metrics
}

func NewReloadRulesTask(trigger Trigger, categoriesFile, authorsFile string, state *State, m *metrics.Metrics) *ReloadRulesTask {
	return &ReloadRulesTask{
		Task:           NewTask(TaskTypeReloadRules, trigger),
		categoriesFile: categoriesFile,
		authorsFile:    authorsFile,
		state:          state,
		metrics:        m,
	}
}

// Execute loads both rule files and swaps them in. On error the previous
// rules stay active.
func (t *ReloadRulesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ruleSet, err := rules.Load(t.categoriesFile, t.authorsFile)
	if t.metrics != nil {
		t.metrics.ObserveReload(err)
	}
	if err != nil {
		return fmt.Errorf("failed to reload rules: %w", err)
	}

	t.state.SwapRules(ruleSet)

	slog.Info("Task completed",
		"type", "ReloadRules",
		"trigger", t.Trigger,
		"categories_file", t.categoriesFile,
		"duration", t.GetDuration(),
		"categories", len(ruleSet.Categories.Categories))

	return nil
}
