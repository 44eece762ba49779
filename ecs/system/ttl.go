package system

import (
	"time"

	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/effect"
	"github.com/milk9111/pickups/pickup"
	"go.uber.org/zap"
)

// TTLSystem decrements frame-based TTL components and destroys entities when
// the TTL reaches zero. Pickups release their sensor and script VM first.
type TTLSystem struct {
	log *zap.Logger
}

func NewTTLSystem(log *zap.Logger) *TTLSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &TTLSystem{log: log}
}

func (s *TTLSystem) Phase() ecs.Phase { return ecs.PhaseCleanup }

func (s *TTLSystem) Update(w *ecs.World, dt time.Duration) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		if ttl == nil {
			return
		}

		if ttl.Frames > 0 {
			ttl.Frames--
			if ttl.Frames > 0 {
				return
			}
		}

		if p, ok := ecs.Get(w, e, pickup.Component.Kind()); ok {
			destroyPickup(p, s.log)
		}
		ecs.DestroyEntity(w, e)
	})
}

func destroyPickup(p *pickup.Pickup, log *zap.Logger) {
	p.Destroy()
	if err := effect.Close(p.Effect()); err != nil {
		log.Warn("close pickup effect", zap.Int("model", p.ModelID()), zap.Error(err))
	}
}
