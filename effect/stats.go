package effect

import (
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
)

// Health heals by Amount up to MaxHealth. An actor already at full health
// leaves the pickup in place.
type Health struct {
	base
}

func buildHealth(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	return &Health{base{env: env, spec: spec}}, nil
}

func (h *Health) OnTouch(p *pickup.Pickup, t physics.Touch) {
	s, ok := h.stats(t.Entity)
	if !ok || s.Health >= s.MaxHealth {
		return
	}
	s.Health = min(s.Health+h.spec.Amount, s.MaxHealth)
	h.collect(p, t)
}

// Armour works like Health against MaxArmour, which defaults to 100.
type Armour struct {
	base
}

func buildArmour(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	return &Armour{base{env: env, spec: spec}}, nil
}

func (a *Armour) OnTouch(p *pickup.Pickup, t physics.Touch) {
	s, ok := a.stats(t.Entity)
	if !ok {
		return
	}
	limit := s.MaxArmour
	if limit <= 0 {
		limit = defaultArmourCap
	}
	if s.Armour >= limit {
		return
	}
	s.Armour = min(s.Armour+a.spec.Amount, limit)
	a.collect(p, t)
}

// Money adds Amount to the actor's cash and score.
type Money struct {
	base
}

func buildMoney(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	return &Money{base{env: env, spec: spec}}, nil
}

func (m *Money) OnTouch(p *pickup.Pickup, t physics.Touch) {
	s, ok := m.stats(t.Entity)
	if !ok {
		return
	}
	s.Money += m.spec.Amount
	s.Score += m.spec.Amount
	m.collect(p, t)
}

// Weapon gives Amount rounds of the catalog weapon, adding an inventory to
// actors that have none.
type Weapon struct {
	base
}

func buildWeapon(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	return &Weapon{base{env: env, spec: spec}}, nil
}

func (wp *Weapon) OnTouch(p *pickup.Pickup, t physics.Touch) {
	if !giveWeapon(wp.env.World, t.Entity, wp.spec.Weapon, wp.spec.Amount) {
		return
	}
	wp.collect(p, t)
}

func giveWeapon(w *ecs.World, e ecs.Entity, weapon, ammo int) bool {
	if w == nil || !w.IsAlive(e) {
		return false
	}
	inv, ok := ecs.Get(w, e, component.InventoryComponent.Kind())
	if !ok {
		inv = &component.Inventory{}
		if err := ecs.Add(w, e, component.InventoryComponent.Kind(), inv); err != nil {
			return false
		}
	}
	inv.Give(weapon, ammo)
	return true
}

// Ability grants the catalog's named abilities.
type Ability struct {
	base
}

func buildAbility(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
	return &Ability{base{env: env, spec: spec}}, nil
}

func (a *Ability) OnTouch(p *pickup.Pickup, t physics.Touch) {
	for _, name := range a.spec.Abilities {
		if !grantAbility(a.env.World, t.Entity, name) {
			return
		}
	}
	a.collect(p, t)
}

func grantAbility(w *ecs.World, e ecs.Entity, name string) bool {
	if w == nil || !w.IsAlive(e) {
		return false
	}
	ab, ok := ecs.Get(w, e, component.AbilitiesComponent.Kind())
	if !ok {
		ab = &component.Abilities{}
		if err := ecs.Add(w, e, component.AbilitiesComponent.Kind(), ab); err != nil {
			return false
		}
	}
	ab.Grant(name)
	return true
}
