package system

import (
	"math"
	"time"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
)

// MovementSystem walks actors along their waypoints.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Phase() ecs.Phase { return ecs.PhaseInput }

func (s *MovementSystem) Update(w *ecs.World, dt time.Duration) {
	if w == nil || dt <= 0 {
		return
	}

	ecs.ForEach2(w, component.WaypointsComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, wp *component.Waypoints, t *component.Transform) {
		if wp == nil || t == nil || wp.Speed <= 0 {
			return
		}
		budget := wp.Speed * dt.Seconds()
		// Coincident looping points would never consume the budget.
		for hops := 0; budget > 0 && wp.Next < len(wp.Points) && hops <= len(wp.Points); hops++ {
			target := wp.Points[wp.Next]
			delta := target.Sub(t.Position)
			dist := delta.Len()
			if dist > 0 {
				t.Heading = math.Atan2(delta.Y, delta.X)
			}
			if budget < dist {
				t.Position = common.LerpVec3(t.Position, target, budget/dist)
				return
			}
			t.Position = target
			budget -= dist
			wp.Next++
			if wp.Next >= len(wp.Points) && wp.Loop {
				wp.Next = 0
			}
		}
	})
}
