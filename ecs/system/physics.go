package system

import (
	"time"

	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
)

// PhysicsSystem mirrors actor transforms into the physics world so pickup
// sensors see where everything is this frame.
type PhysicsSystem struct {
	world *physics.World
}

func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (s *PhysicsSystem) Phase() ecs.Phase { return ecs.PhasePreUpdate }

func (s *PhysicsSystem) World() *physics.World {
	return s.world
}

func (s *PhysicsSystem) Update(w *ecs.World, dt time.Duration) {
	if w == nil || s.world == nil {
		return
	}

	seen := make(map[ecs.Entity]bool)
	ecs.ForEach2(w, component.ActorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, a *component.Actor, t *component.Transform) {
		if a == nil || t == nil {
			return
		}
		seen[e] = true
		if !s.world.HasActor(e) {
			s.world.AddActor(e, t.Position, *a)
			return
		}
		s.world.MoveActor(e, t.Position)
	})

	// Bodies of destroyed or stripped actors.
	for _, e := range s.world.Actors() {
		if !seen[e] {
			s.world.RemoveActor(e)
		}
	}

	s.world.Step(dt)
}
