package api

import (
	"github.com/lysyi3m/feed-digest/app/tasks"
)

type Handler struct {
	state     *tasks.State
	scheduler tasks.TaskSchedulerInterface
	version   string
}
