package tasks

// TaskSchedulerInterface is what the API needs from the scheduler: a way to
// queue on-demand refresh and reload tasks next to the periodic ones.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewRefreshTask(trigger Trigger) *RefreshTask
	NewReloadRulesTask(trigger Trigger) *ReloadRulesTask
}
