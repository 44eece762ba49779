// Package effect holds the concrete pickup kinds: what happens to an actor
// when it touches an enabled pickup, and how the pickup is consumed.
package effect

import (
	"errors"
	"fmt"
	"io"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
	"go.uber.org/zap"
)

var (
	ErrUnknownEffect = errors.New("effect: unknown effect")
	ErrUnknownActor  = errors.New("effect: unknown actor type")
	ErrUnknownScript = errors.New("effect: unsupported script language")
	ErrNoHandler     = errors.New("effect: script defines no on_touch")
)

const defaultArmourCap = 100

// Remover defers pickup removal to the end of the frame.
type Remover interface {
	QueueRemoval(p *pickup.Pickup)
}

// Env is what effects may touch: the ECS world holding actor state, the
// end-of-frame removal queue and a logger.
type Env struct {
	World   *ecs.World
	Remover Remover
	Log     *zap.Logger
}

func (env Env) logger() *zap.Logger {
	if env.Log == nil {
		return zap.NewNop()
	}
	return env.Log
}

// Collected is the payload of ecs.EventPickupCollected.
type Collected struct {
	Model    int
	Name     string
	Actor    ecs.Entity
	Position common.Vec3
}

type buildFn func(env Env, spec prefabs.PickupSpec) (pickup.Effect, error)

var effectRegistry = map[string]buildFn{
	"health":  buildHealth,
	"armour":  buildArmour,
	"weapon":  buildWeapon,
	"money":   buildMoney,
	"ability": buildAbility,
	"script":  buildScript,
}

// Build returns the Effect for a catalog entry.
func Build(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	fn, ok := effectRegistry[spec.Effect]
	if !ok {
		return nil, fmt.Errorf("%w: %q (model %d)", ErrUnknownEffect, spec.Effect, spec.Model)
	}
	return fn(env, spec)
}

// Qualifier returns the actor filter for spec; an empty touched_by list keeps
// the characters-only default.
func Qualifier(spec prefabs.PickupSpec) (pickup.Qualifier, error) {
	if len(spec.TouchedBy) == 0 {
		return pickup.CharactersOnly, nil
	}
	allowed := make(map[component.ObjectType]bool, len(spec.TouchedBy))
	for _, name := range spec.TouchedBy {
		ot, ok := component.ParseObjectType(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (model %d)", ErrUnknownActor, name, spec.Model)
		}
		allowed[ot] = true
	}
	return func(t physics.Touch) bool { return allowed[t.Type] }, nil
}

// Close releases resources held by effects that own a script VM.
func Close(e pickup.Effect) error {
	if c, ok := e.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// base carries what every catalog-built effect shares.
type base struct {
	env  Env
	spec prefabs.PickupSpec
}

// collect consumes the pickup: once-only kinds are queued for removal, the
// rest go quiet for the catalog cooldown.
func (b base) collect(p *pickup.Pickup, t physics.Touch) {
	p.Disable(b.spec.CooldownDuration())
	if b.spec.Once && b.env.Remover != nil {
		b.env.Remover.QueueRemoval(p)
	}
	b.announce(p, t)
}

func (b base) announce(p *pickup.Pickup, t physics.Touch) {
	if b.env.World != nil {
		b.env.World.Events().Push(ecs.Event{Type: ecs.EventPickupCollected, Data: Collected{
			Model:    p.ModelID(),
			Name:     b.spec.Name,
			Actor:    t.Entity,
			Position: p.Position(),
		}})
	}
	b.env.logger().Debug("pickup collected",
		zap.String("name", b.spec.Name),
		zap.Int("model", p.ModelID()),
		zap.Stringer("actor", t.Entity))
}

func (b base) stats(e ecs.Entity) (*component.Stats, bool) {
	if b.env.World == nil {
		return nil, false
	}
	return ecs.Get(b.env.World, e, component.StatsComponent.Kind())
}
