package ecs

import (
	"sort"
	"time"
)

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // actor intent and movement
	PhasePreUpdate               // sync transforms into the physics world
	PhaseUpdate                  // game logic, pickup ticks
	PhasePostUpdate              // event consumers
	PhaseCleanup                 // destroy queued entities
)

// System updates a world each frame.
type System interface {
	Phase() Phase
	Update(w *World, dt time.Duration)
}

// Scheduler runs systems in phase order; systems sharing a phase keep their
// registration order.
type Scheduler struct {
	systems []System
	sorted  bool
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
	s.sorted = false
}

// Update runs one frame and clears any events nobody drained.
func (s *Scheduler) Update(w *World, dt time.Duration) {
	s.ensureSorted()
	for _, system := range s.systems {
		system.Update(w, dt)
	}
	w.Events().flush()
}

func (s *Scheduler) Systems() []System {
	s.ensureSorted()
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

func (s *Scheduler) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].Phase() < s.systems[j].Phase()
	})
	s.sorted = true
}
