package tasks

import (
	"sync/atomic"

	"github.com/lysyi3m/feed-digest/app/digest"
	"github.com/lysyi3m/feed-digest/app/rules"
)

// State is the in-memory host state shared by the scheduler and the API. It
// holds the current pipeline and the latest result, both swapped atomically.
type State struct {
	pipeline atomic.Pointer[digest.Pipeline]
	latest   atomic.Pointer[digest.Result]
}

func NewState(pipeline *digest.Pipeline) *State {
	s := &State{}
	s.pipeline.Store(pipeline)
	return s
}

func (s *State) Pipeline() *digest.Pipeline {
	return s.pipeline.Load()
}

// SwapRules rebinds the pipeline to a new rule set. Runs already in flight
// keep the rules they started with.
func (s *State) SwapRules(ruleSet *rules.Rules) {
	for {
		current := s.pipeline.Load()
		if s.pipeline.CompareAndSwap(current, current.WithRules(ruleSet)) {
			return
		}
	}
}

func (s *State) Latest() (*digest.Result, bool) {
	result := s.latest.Load()
	return result, result != nil
}

func (s *State) Publish(result digest.Result) {
	s.latest.Store(&result)
}
