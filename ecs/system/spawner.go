package system

import (
	"fmt"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/effect"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
	"go.uber.org/zap"
)

// Spawner places catalog pickups and actors into the world.
type Spawner struct {
	world   *ecs.World
	physics *physics.World
	catalog *prefabs.Catalog
	log     *zap.Logger
}

// StateChange is the payload of the pickup enabled/disabled events.
type StateChange struct {
	Entity ecs.Entity
	Model  int
}

func NewSpawner(w *ecs.World, pw *physics.World, catalog *prefabs.Catalog, log *zap.Logger) *Spawner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{world: w, physics: pw, catalog: catalog, log: log.Named("spawner")}
}

// SetCatalog swaps the catalog used by later Spawn calls.
func (s *Spawner) SetCatalog(catalog *prefabs.Catalog) {
	s.catalog = catalog
}

func (s *Spawner) Catalog() *prefabs.Catalog {
	return s.catalog
}

// Spawn places the catalog pickup for model at pos.
func (s *Spawner) Spawn(model int, pos common.Vec3) (ecs.Entity, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("spawn model %d: no catalog", model)
	}
	spec, err := s.catalog.Lookup(model)
	if err != nil {
		return 0, fmt.Errorf("spawn: %w", err)
	}

	eff, err := effect.Build(effect.Env{World: s.world, Remover: s, Log: s.log}, spec)
	if err != nil {
		return 0, fmt.Errorf("spawn model %d: %w", model, err)
	}
	qualifies, err := effect.Qualifier(spec)
	if err != nil {
		_ = effect.Close(eff)
		return 0, fmt.Errorf("spawn model %d: %w", model, err)
	}

	e := s.world.CreateEntity()
	p := pickup.New(s.physics, pos, model, eff,
		pickup.WithRadius(spec.SensorRadius()),
		pickup.WithQualifier(qualifies),
		pickup.WithStateListener(s.stateListener(e)),
		pickup.WithLogger(s.log))

	if err := ecs.Add(s.world, e, pickup.Component.Kind(), p); err != nil {
		destroyPickup(p, s.log)
		s.world.DestroyEntity(e)
		return 0, fmt.Errorf("spawn model %d: %w", model, err)
	}
	if err := ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		destroyPickup(p, s.log)
		s.world.DestroyEntity(e)
		return 0, fmt.Errorf("spawn model %d: %w", model, err)
	}

	s.log.Debug("pickup spawned",
		zap.Int("model", model),
		zap.String("name", spec.Name),
		zap.Stringer("entity", e))
	return e, nil
}

func (s *Spawner) stateListener(e ecs.Entity) pickup.StateListener {
	return func(p *pickup.Pickup, enabled bool) {
		typ := ecs.EventPickupDisabled
		if enabled {
			typ = ecs.EventPickupEnabled
		}
		s.world.Events().Push(ecs.Event{Type: typ, Data: StateChange{Entity: e, Model: p.ModelID()}})
	}
}

// QueueRemoval marks p's entity for destruction at the end of the frame.
func (s *Spawner) QueueRemoval(p *pickup.Pickup) {
	e, ok := s.entityOf(p)
	if !ok {
		return
	}
	if err := ecs.Add(s.world, e, component.TTLComponent.Kind(), &component.TTL{Frames: 1}); err != nil {
		s.log.Warn("queue pickup removal", zap.Stringer("entity", e), zap.Error(err))
		return
	}
	s.world.Events().Push(ecs.Event{Type: ecs.EventPickupRemoved, Data: StateChange{Entity: e, Model: p.ModelID()}})
}

func (s *Spawner) entityOf(p *pickup.Pickup) (ecs.Entity, bool) {
	var found ecs.Entity
	ecs.ForEach(s.world, pickup.Component.Kind(), func(e ecs.Entity, candidate *pickup.Pickup) {
		if candidate == p {
			found = e
		}
	})
	return found, found.Valid()
}

// DespawnAll destroys every pickup immediately. It must not run inside a
// pickup tick.
func (s *Spawner) DespawnAll() int {
	n := 0
	ecs.ForEach(s.world, pickup.Component.Kind(), func(e ecs.Entity, p *pickup.Pickup) {
		destroyPickup(p, s.log)
		s.world.DestroyEntity(e)
		n++
	})
	return n
}

// SpawnActor adds a mobile actor with stats, and a waypoint route when
// route has points. A failed component add leaves no entity behind.
func (s *Spawner) SpawnActor(actor component.Actor, pos common.Vec3, stats component.Stats, route component.Waypoints) (ecs.Entity, error) {
	e := s.world.CreateEntity()
	if actor.Radius <= 0 {
		actor.Radius = common.DefaultActorRadius
	}
	if err := s.addActorComponents(e, actor, pos, stats, route); err != nil {
		s.world.DestroyEntity(e)
		return 0, fmt.Errorf("spawn actor %q: %w", actor.Name, err)
	}
	s.log.Debug("actor spawned",
		zap.String("name", actor.Name),
		zap.Stringer("type", actor.Type),
		zap.Stringer("entity", e))
	return e, nil
}

func (s *Spawner) addActorComponents(e ecs.Entity, actor component.Actor, pos common.Vec3, stats component.Stats, route component.Waypoints) error {
	if err := ecs.Add(s.world, e, component.ActorComponent.Kind(), &actor); err != nil {
		return err
	}
	if err := ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		return err
	}
	if err := ecs.Add(s.world, e, component.StatsComponent.Kind(), &stats); err != nil {
		return err
	}
	if len(route.Points) > 0 {
		if err := ecs.Add(s.world, e, component.WaypointsComponent.Kind(), &route); err != nil {
			return err
		}
	}
	if actor.Player {
		return ecs.Add(s.world, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	}
	return nil
}
