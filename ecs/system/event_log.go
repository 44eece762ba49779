package system

import (
	"time"

	"github.com/milk9111/pickups/ecs"
	"go.uber.org/zap"
)

// EventLogSystem drains the frame's events into the log and keeps running
// totals per event type.
type EventLogSystem struct {
	log    *zap.Logger
	counts map[string]int
}

func NewEventLogSystem(log *zap.Logger) *EventLogSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventLogSystem{log: log.Named("events"), counts: make(map[string]int)}
}

func (s *EventLogSystem) Phase() ecs.Phase { return ecs.PhasePostUpdate }

func (s *EventLogSystem) Update(w *ecs.World, dt time.Duration) {
	if w == nil {
		return
	}
	for _, evt := range w.Events().Drain() {
		s.counts[evt.Type]++
		s.log.Info(evt.Type, zap.Any("data", evt.Data))
	}
}

// Count returns how many events of type typ have been seen.
func (s *EventLogSystem) Count(typ string) int {
	return s.counts[typ]
}
