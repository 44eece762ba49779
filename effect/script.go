package effect

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
)

// ScriptHandler is the global function every pickup script must define.
const ScriptHandler = "on_touch"

func buildScript(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	src, err := prefabs.LoadScript(spec.Script)
	if err != nil {
		return nil, fmt.Errorf("effect: model %d: %w", spec.Model, err)
	}
	switch strings.ToLower(filepath.Ext(spec.Script)) {
	case ".tengo":
		return NewTengoScript(env, spec, src)
	case ".lua":
		return NewLuaScript(env, spec, src)
	}
	return nil, fmt.Errorf("%w: %q (model %d)", ErrUnknownScript, spec.Script, spec.Model)
}

// scriptHost is the Go side of the engine object handed to scripts for a
// single touch.
type scriptHost struct {
	base
	p *pickup.Pickup
	t physics.Touch
}

func (h *scriptHost) heal(n int) bool {
	s, ok := h.stats(h.t.Entity)
	if !ok || s.Health >= s.MaxHealth {
		return false
	}
	s.Health = min(s.Health+n, s.MaxHealth)
	return true
}

func (h *scriptHost) giveMoney(n int) bool {
	s, ok := h.stats(h.t.Entity)
	if !ok {
		return false
	}
	s.Money += n
	return true
}

func (h *scriptHost) addScore(n int) bool {
	s, ok := h.stats(h.t.Entity)
	if !ok {
		return false
	}
	s.Score += n
	return true
}

func (h *scriptHost) giveWeapon(weapon, ammo int) bool {
	return giveWeapon(h.env.World, h.t.Entity, weapon, ammo)
}

func (h *scriptHost) grant(name string) bool {
	return grantAbility(h.env.World, h.t.Entity, name)
}

func (h *scriptHost) hasAbility(name string) bool {
	if h.env.World == nil {
		return false
	}
	ab, ok := ecs.Get(h.env.World, h.t.Entity, component.AbilitiesComponent.Kind())
	return ok && ab.Has(name)
}

// disable takes seconds; zero or less uses the catalog cooldown.
func (h *scriptHost) disable(seconds float64) {
	d := time.Duration(seconds * float64(time.Second))
	if d <= 0 {
		d = h.spec.CooldownDuration()
	}
	h.p.Disable(d)
}

func (h *scriptHost) remove() {
	h.p.Disable(h.spec.CooldownDuration())
	if h.env.Remover != nil {
		h.env.Remover.QueueRemoval(h.p)
	}
}

// finish announces the collection when the script switched the pickup off.
func (h *scriptHost) finish(wasEnabled bool) {
	if wasEnabled && !h.p.IsEnabled() {
		h.announce(h.p, h.t)
	}
}
