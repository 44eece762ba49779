// Package pickup implements a world-placed collectible that senses nearby
// actors through a broad-phase overlap sensor and hands each qualifying touch
// to a kind-specific Effect.
//
// A Pickup is either enabled, in which case every tick it reports each
// overlapping actor to its Effect, or disabled with a cooldown that ticks down
// to zero and re-enables it. The core never disables itself: debouncing is the
// Effect's call, usually by calling SetEnabled(false) and SetCooldown from
// inside OnTouch.
package pickup

import (
	"time"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
	"go.uber.org/zap"
)

// Broadphase is the slice of the physics world a pickup needs: register one
// sensor, query it, release it.
type Broadphase interface {
	AddSensor(pos common.Vec3, radius float64) physics.SensorID
	Overlaps(id physics.SensorID) []physics.Touch
	RemoveSensor(id physics.SensorID)
}

// Effect is the per-kind behavior run when a qualifying actor touches an
// enabled pickup. It is called at most once per actor per tick.
type Effect interface {
	OnTouch(p *Pickup, t physics.Touch)
}

// EffectFunc adapts a plain function to Effect.
type EffectFunc func(p *Pickup, t physics.Touch)

func (f EffectFunc) OnTouch(p *Pickup, t physics.Touch) {
	f(p, t)
}

// Qualifier decides which touching actors count.
type Qualifier func(t physics.Touch) bool

// CharactersOnly accepts characters (players and pedestrians) and nothing else.
func CharactersOnly(t physics.Touch) bool {
	return t.Type == component.ObjectCharacter
}

// StateListener is told about every enabled/disabled transition.
type StateListener func(p *Pickup, enabled bool)

type Pickup struct {
	world    Broadphase
	position common.Vec3
	modelID  int
	radius   float64

	enabled   bool
	cooldown  time.Duration
	sensor    physics.SensorID
	destroyed bool

	effect    Effect
	qualifies Qualifier
	listener  StateListener
	log       *zap.Logger
}

type Option func(*Pickup)

// WithRadius overrides the sensor radius.
func WithRadius(r float64) Option {
	return func(p *Pickup) {
		if r > 0 {
			p.radius = r
		}
	}
}

// WithQualifier replaces CharactersOnly.
func WithQualifier(q Qualifier) Option {
	return func(p *Pickup) {
		if q != nil {
			p.qualifies = q
		}
	}
}

// WithStateListener registers fn for enable/disable transitions.
func WithStateListener(fn StateListener) Option {
	return func(p *Pickup) { p.listener = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Pickup) {
		if log != nil {
			p.log = log
		}
	}
}

// New places a pickup at pos and registers its sensor with world. The pickup
// starts enabled with no cooldown. world must outlive the pickup.
func New(world Broadphase, pos common.Vec3, modelID int, effect Effect, opts ...Option) *Pickup {
	p := &Pickup{
		world:     world,
		position:  pos,
		modelID:   modelID,
		radius:    common.DefaultSensorRadius,
		enabled:   true,
		effect:    effect,
		qualifies: CharactersOnly,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sensor = world.AddSensor(pos, p.radius)
	return p
}

// Tick advances the pickup by dt of simulated time.
//
// While disabled the cooldown runs down (clamped at zero) and the pickup
// re-enables on the tick it reaches zero; that tick processes no touches.
// dt <= 0 leaves the cooldown alone. While enabled every qualifying
// overlapping actor is passed to the Effect once.
func (p *Pickup) Tick(dt time.Duration) {
	if p.destroyed {
		return
	}

	if !p.enabled {
		if dt <= 0 {
			return
		}
		p.cooldown -= dt
		if p.cooldown <= 0 {
			p.cooldown = 0
			p.SetEnabled(true)
		}
		return
	}

	if p.effect == nil {
		return
	}

	// Collect the whole overlap set before running any hook; hooks may
	// mutate the world.
	touches := p.world.Overlaps(p.sensor)
	for _, t := range touches {
		if !p.enabled || p.destroyed {
			return
		}
		if !p.qualifies(t) {
			continue
		}
		p.log.Debug("pickup touched",
			zap.Int("model", p.modelID),
			zap.Stringer("actor", t.Entity),
			zap.Stringer("type", t.Type))
		p.effect.OnTouch(p, t)
	}
}

// SetEnabled toggles touch processing. Disabling does not choose a cooldown;
// pair it with SetCooldown.
func (p *Pickup) SetEnabled(enabled bool) {
	if p.enabled == enabled {
		return
	}
	p.enabled = enabled
	if enabled {
		p.cooldown = 0
	}
	if p.listener != nil {
		p.listener(p, enabled)
	}
}

// SetCooldown sets how long a disabled pickup waits before re-enabling.
// Negative durations clamp to zero.
func (p *Pickup) SetCooldown(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.cooldown = d
}

// Disable is SetEnabled(false) followed by SetCooldown(d).
func (p *Pickup) Disable(d time.Duration) {
	p.SetEnabled(false)
	p.SetCooldown(d)
}

func (p *Pickup) IsEnabled() bool {
	return p.enabled
}

// Cooldown returns the remaining cooldown. It is only meaningful while
// disabled.
func (p *Pickup) Cooldown() time.Duration {
	return p.cooldown
}

func (p *Pickup) ModelID() int {
	return p.modelID
}

func (p *Pickup) Position() common.Vec3 {
	return p.position
}

func (p *Pickup) Radius() float64 {
	return p.radius
}

// Type reports the world-object type tag.
func (p *Pickup) Type() component.ObjectType {
	return component.ObjectPickup
}

// Effect returns the behavior attached at construction.
func (p *Pickup) Effect() Effect {
	return p.effect
}

// Destroyed reports whether Destroy has run.
func (p *Pickup) Destroyed() bool {
	return p.destroyed
}

// Destroy releases the sensor. Later calls, and later ticks, do nothing.
func (p *Pickup) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.world.RemoveSensor(p.sensor)
	p.log.Debug("pickup destroyed", zap.Int("model", p.modelID))
}

// Component stores a *Pickup on its world entity.
var Component = component.NewComponent[Pickup]()
