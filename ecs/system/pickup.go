package system

import (
	"time"

	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/pickup"
)

// PickupSystem ticks every placed pickup once per frame.
type PickupSystem struct{}

func NewPickupSystem() *PickupSystem {
	return &PickupSystem{}
}

func (s *PickupSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }

func (s *PickupSystem) Update(w *ecs.World, dt time.Duration) {
	if w == nil {
		return
	}

	ecs.ForEach(w, pickup.Component.Kind(), func(e ecs.Entity, p *pickup.Pickup) {
		if p == nil {
			return
		}
		p.Tick(dt)
	})
}
