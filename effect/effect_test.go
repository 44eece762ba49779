package effect

import (
	"errors"
	"testing"
	"time"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
)

type stubBroadphase struct {
	overlapping []physics.Touch
}

func (s *stubBroadphase) AddSensor(common.Vec3, float64) physics.SensorID { return 1 }
func (s *stubBroadphase) Overlaps(physics.SensorID) []physics.Touch {
	return append([]physics.Touch(nil), s.overlapping...)
}
func (s *stubBroadphase) RemoveSensor(physics.SensorID) {}

type recordingRemover struct {
	queued []*pickup.Pickup
}

func (r *recordingRemover) QueueRemoval(p *pickup.Pickup) {
	r.queued = append(r.queued, p)
}

type fixture struct {
	world   *ecs.World
	remover *recordingRemover
	bp      *stubBroadphase
	actor   ecs.Entity
	stats   *component.Stats
}

func newFixture(t *testing.T, stats component.Stats, typ component.ObjectType, player bool) *fixture {
	t.Helper()
	w := ecs.NewWorld()
	e := w.CreateEntity()
	s := stats
	if err := ecs.Add(w, e, component.StatsComponent.Kind(), &s); err != nil {
		t.Fatalf("add stats: %v", err)
	}
	return &fixture{
		world:   w,
		remover: &recordingRemover{},
		bp:      &stubBroadphase{overlapping: []physics.Touch{{Entity: e, Type: typ, Player: player}}},
		actor:   e,
		stats:   &s,
	}
}

func (f *fixture) env() Env {
	return Env{World: f.world, Remover: f.remover}
}

func (f *fixture) spawn(t *testing.T, spec prefabs.PickupSpec) *pickup.Pickup {
	t.Helper()
	eff, err := Build(f.env(), spec)
	if err != nil {
		t.Fatalf("build %q: %v", spec.Effect, err)
	}
	q, err := Qualifier(spec)
	if err != nil {
		t.Fatalf("qualifier: %v", err)
	}
	p := pickup.New(f.bp, common.Vec3{}, spec.Model, eff, pickup.WithQualifier(q))
	t.Cleanup(func() { _ = Close(eff) })
	return p
}

func (f *fixture) collected() int {
	n := 0
	for _, evt := range f.world.Events().Drain() {
		if evt.Type == ecs.EventPickupCollected {
			n++
		}
	}
	return n
}

func catalogSpec(t *testing.T, model int) prefabs.PickupSpec {
	t.Helper()
	cat, err := prefabs.LoadCatalog(prefabs.CatalogFile)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	spec, err := cat.Lookup(model)
	if err != nil {
		t.Fatalf("lookup %d: %v", model, err)
	}
	return spec
}

func TestBuildUnknownEffect(t *testing.T) {
	_, err := Build(Env{}, prefabs.PickupSpec{Model: 1, Effect: "teleport"})
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("expected ErrUnknownEffect, got %v", err)
	}
}

func TestQualifier(t *testing.T) {
	tests := []struct {
		name      string
		touchedBy []string
		typ       component.ObjectType
		want      bool
	}{
		{name: "default_character", typ: component.ObjectCharacter, want: true},
		{name: "default_vehicle", typ: component.ObjectVehicle, want: false},
		{name: "vehicle_only_accepts_vehicle", touchedBy: []string{"vehicle"}, typ: component.ObjectVehicle, want: true},
		{name: "vehicle_only_rejects_character", touchedBy: []string{"vehicle"}, typ: component.ObjectCharacter, want: false},
		{name: "both", touchedBy: []string{"character", "vehicle"}, typ: component.ObjectCharacter, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Qualifier(prefabs.PickupSpec{TouchedBy: tc.touchedBy})
			if err != nil {
				t.Fatalf("qualifier: %v", err)
			}
			if got := q(physics.Touch{Type: tc.typ}); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if _, err := Qualifier(prefabs.PickupSpec{TouchedBy: []string{"boat"}}); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name        string
		health      int
		wantHealth  int
		wantEnabled bool
	}{
		{name: "heals", health: 50, wantHealth: 75, wantEnabled: false},
		{name: "caps_at_max", health: 90, wantHealth: 100, wantEnabled: false},
		{name: "full_leaves_pickup", health: 100, wantHealth: 100, wantEnabled: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, component.Stats{Health: tc.health, MaxHealth: 100}, component.ObjectCharacter, true)
			p := f.spawn(t, prefabs.PickupSpec{Model: 1240, Name: "health", Effect: "health", Amount: 25, Cooldown: 30})

			p.Tick(time.Second)

			if f.stats.Health != tc.wantHealth {
				t.Fatalf("expected health %d, got %d", tc.wantHealth, f.stats.Health)
			}
			if p.IsEnabled() != tc.wantEnabled {
				t.Fatalf("expected enabled=%v, got %v", tc.wantEnabled, p.IsEnabled())
			}
			if !tc.wantEnabled && p.Cooldown() != 30*time.Second {
				t.Fatalf("expected 30s cooldown, got %v", p.Cooldown())
			}
			wantEvents := 1
			if tc.wantEnabled {
				wantEvents = 0
			}
			if got := f.collected(); got != wantEvents {
				t.Fatalf("expected %d collected events, got %d", wantEvents, got)
			}
		})
	}
}

func TestArmourDefaultCap(t *testing.T) {
	f := newFixture(t, component.Stats{Armour: 80}, component.ObjectCharacter, true)
	p := f.spawn(t, prefabs.PickupSpec{Model: 1242, Effect: "armour", Amount: 50})

	p.Tick(time.Second)

	if f.stats.Armour != defaultArmourCap {
		t.Fatalf("expected armour %d, got %d", defaultArmourCap, f.stats.Armour)
	}
	if p.IsEnabled() || p.Cooldown() != common.DefaultPickupCooldown {
		t.Fatalf("expected default cooldown, got enabled=%v cooldown=%v", p.IsEnabled(), p.Cooldown())
	}
}

func TestMoneyAndWeapon(t *testing.T) {
	f := newFixture(t, component.Stats{}, component.ObjectCharacter, true)
	cash := f.spawn(t, prefabs.PickupSpec{Model: 1274, Effect: "money", Amount: 100, Cooldown: 45})
	gun := f.spawn(t, prefabs.PickupSpec{Model: 172, Effect: "weapon", Weapon: 2, Amount: 68})

	cash.Tick(time.Second)
	gun.Tick(time.Second)

	if f.stats.Money != 100 || f.stats.Score != 100 {
		t.Fatalf("expected money and score 100, got %+v", *f.stats)
	}
	inv, ok := ecs.Get(f.world, f.actor, component.InventoryComponent.Kind())
	if !ok {
		t.Fatalf("expected inventory to be added")
	}
	if inv.Weapons[2] != 68 {
		t.Fatalf("expected 68 rounds of weapon 2, got %v", inv.Weapons)
	}
	if cash.IsEnabled() || gun.IsEnabled() {
		t.Fatalf("expected both pickups consumed")
	}
	if got := f.collected(); got != 2 {
		t.Fatalf("expected 2 collected events, got %d", got)
	}
}

func TestAbilityOnceQueuesRemoval(t *testing.T) {
	f := newFixture(t, component.Stats{}, component.ObjectCharacter, true)
	p := f.spawn(t, prefabs.PickupSpec{Model: 1241, Effect: "ability", Abilities: []string{"adrenaline"}, Once: true})

	p.Tick(time.Second)

	ab, ok := ecs.Get(f.world, f.actor, component.AbilitiesComponent.Kind())
	if !ok || !ab.Has("adrenaline") {
		t.Fatalf("expected adrenaline to be granted")
	}
	if len(f.remover.queued) != 1 || f.remover.queued[0] != p {
		t.Fatalf("expected pickup queued for removal, got %d", len(f.remover.queued))
	}
	if p.IsEnabled() {
		t.Fatalf("expected pickup disabled until removal")
	}
}

func TestActorWithoutStatsIsIgnored(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	bp := &stubBroadphase{overlapping: []physics.Touch{{Entity: e, Type: component.ObjectCharacter}}}
	eff, err := Build(Env{World: w}, prefabs.PickupSpec{Effect: "health", Amount: 25})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := pickup.New(bp, common.Vec3{}, 1240, eff)

	p.Tick(time.Second)

	if !p.IsEnabled() {
		t.Fatalf("expected pickup to stay enabled")
	}
}

func TestTengoBribe(t *testing.T) {
	tests := []struct {
		name      string
		typ       component.ObjectType
		wantScore int
	}{
		{name: "on_foot", typ: component.ObjectCharacter, wantScore: 250},
		{name: "in_vehicle", typ: component.ObjectVehicle, wantScore: 125},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, component.Stats{}, tc.typ, true)
			spec := catalogSpec(t, 1247)
			p := f.spawn(t, spec)

			p.Tick(time.Second)

			if f.stats.Score != tc.wantScore {
				t.Fatalf("expected score %d, got %d", tc.wantScore, f.stats.Score)
			}
			if p.IsEnabled() || p.Cooldown() != 120*time.Second {
				t.Fatalf("expected 120s cooldown, got enabled=%v cooldown=%v", p.IsEnabled(), p.Cooldown())
			}
			if got := f.collected(); got != 1 {
				t.Fatalf("expected 1 collected event, got %d", got)
			}
		})
	}
}

func TestLuaJackpot(t *testing.T) {
	t.Run("ignores_non_players", func(t *testing.T) {
		f := newFixture(t, component.Stats{}, component.ObjectCharacter, false)
		p := f.spawn(t, catalogSpec(t, 1239))

		p.Tick(time.Second)

		if f.stats.Money != 0 || !p.IsEnabled() || len(f.remover.queued) != 0 {
			t.Fatalf("expected no effect, got stats=%+v enabled=%v", *f.stats, p.IsEnabled())
		}
		if got := f.collected(); got != 0 {
			t.Fatalf("expected no collected event, got %d", got)
		}
	})

	t.Run("pays_player_and_removes", func(t *testing.T) {
		f := newFixture(t, component.Stats{}, component.ObjectCharacter, true)
		p := f.spawn(t, catalogSpec(t, 1239))

		p.Tick(time.Second)

		if f.stats.Money != 1000 || f.stats.Score != 100 {
			t.Fatalf("expected money 1000 score 100, got %+v", *f.stats)
		}
		if p.IsEnabled() || len(f.remover.queued) != 1 {
			t.Fatalf("expected pickup disabled and queued, got enabled=%v queued=%d", p.IsEnabled(), len(f.remover.queued))
		}
		if got := f.collected(); got != 1 {
			t.Fatalf("expected 1 collected event, got %d", got)
		}
	})
}

func TestScriptEngineFunctions(t *testing.T) {
	tests := []struct {
		name string
		new  func(env Env, spec prefabs.PickupSpec) (pickup.Effect, error)
		src  string
	}{
		{
			name: "tengo",
			new: func(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
				return NewTengoScript(env, spec, []byte(`
on_touch := func(engine, touch) {
	if engine.heal(10) && engine.give_weapon(engine.weapon, 5) && engine.grant("swim") && engine.has_ability("swim") {
		engine.disable(2.5)
	}
}`))
			},
		},
		{
			name: "lua",
			new: func(env Env, spec prefabs.PickupSpec) (pickup.Effect, error) {
				return NewLuaScript(env, spec, []byte(`
function on_touch(engine, touch)
  if engine.heal(10) and engine.give_weapon(engine.weapon, 5) and engine.grant("swim") and engine.has_ability("swim") then
    engine.disable(2.5)
  end
end`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, component.Stats{Health: 10, MaxHealth: 100}, component.ObjectCharacter, true)
			spec := prefabs.PickupSpec{Model: 9, Effect: "script", Script: "test." + tc.name, Weapon: 3}
			eff, err := tc.new(f.env(), spec)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			t.Cleanup(func() { _ = Close(eff) })
			p := pickup.New(f.bp, common.Vec3{}, spec.Model, eff)

			p.Tick(time.Second)

			if f.stats.Health != 20 {
				t.Fatalf("expected health 20, got %d", f.stats.Health)
			}
			inv, ok := ecs.Get(f.world, f.actor, component.InventoryComponent.Kind())
			if !ok || inv.Weapons[3] != 5 {
				t.Fatalf("expected 5 rounds of weapon 3")
			}
			if p.IsEnabled() || p.Cooldown() != 2500*time.Millisecond {
				t.Fatalf("expected 2.5s cooldown, got enabled=%v cooldown=%v", p.IsEnabled(), p.Cooldown())
			}
		})
	}
}

func TestScriptLoadErrors(t *testing.T) {
	spec := prefabs.PickupSpec{Model: 9, Effect: "script", Script: "broken"}

	if _, err := NewTengoScript(Env{}, spec, []byte(`x := 1`)); err == nil {
		t.Fatalf("expected tengo compile error without on_touch")
	}
	if _, err := NewLuaScript(Env{}, spec, []byte(`x = 1`)); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
	if _, err := NewLuaScript(Env{}, spec, []byte(`function (`)); err == nil {
		t.Fatalf("expected lua syntax error")
	}
	_, err := Build(Env{}, prefabs.PickupSpec{Model: 9, Effect: "script", Script: "bribe.js"})
	if err == nil {
		t.Fatalf("expected error for unsupported script")
	}
}

func TestScriptRuntimeErrorKeepsPickup(t *testing.T) {
	f := newFixture(t, component.Stats{}, component.ObjectCharacter, true)
	spec := prefabs.PickupSpec{Model: 9, Effect: "script", Script: "bad.lua"}
	eff, err := NewLuaScript(f.env(), spec, []byte(`function on_touch(engine, touch) error("boom") end`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer eff.Close()
	p := pickup.New(f.bp, common.Vec3{}, spec.Model, eff)

	p.Tick(time.Second)

	if !p.IsEnabled() {
		t.Fatalf("expected pickup to stay enabled after a script error")
	}
}
