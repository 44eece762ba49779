package effect

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
	"go.uber.org/zap"
)

const tengoDispatchScript = `
on_touch(__engine, __touch)
`

// TengoScript runs a tengo pickup script. The source is compiled once and
// re-run for every touch with fresh engine and touch objects.
type TengoScript struct {
	base
	compiled *tengo.Compiled
}

func NewTengoScript(env Env, spec prefabs.PickupSpec, src []byte) (*TengoScript, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + tengoDispatchScript))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__touch", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("effect: compile %s: %w", spec.Script, err)
	}
	return &TengoScript{base: base{env: env, spec: spec}, compiled: compiled}, nil
}

func (s *TengoScript) OnTouch(p *pickup.Pickup, t physics.Touch) {
	h := &scriptHost{base: s.base, p: p, t: t}
	wasEnabled := p.IsEnabled()
	if err := s.run(h); err != nil {
		s.env.logger().Warn("tengo on_touch failed",
			zap.String("script", s.spec.Script),
			zap.Int("model", p.ModelID()),
			zap.Error(err))
		return
	}
	h.finish(wasEnabled)
}

func (s *TengoScript) run(h *scriptHost) error {
	if err := s.compiled.Set("__engine", buildTengoEngine(h)); err != nil {
		return err
	}
	if err := s.compiled.Set("__touch", buildTengoTouch(h.t)); err != nil {
		return err
	}
	return s.compiled.Run()
}

func buildTengoTouch(t physics.Touch) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"entity": &tengo.Int{Value: int64(t.Entity)},
		"type":   &tengo.String{Value: t.Type.String()},
		"player": tengoBool(t.Player),
	}}
}

func buildTengoEngine(h *scriptHost) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"amount":   &tengo.Int{Value: int64(h.spec.Amount)},
		"weapon":   &tengo.Int{Value: int64(h.spec.Weapon)},
		"cooldown": &tengo.Float{Value: h.spec.CooldownDuration().Seconds()},
		"model":    &tengo.Int{Value: int64(h.p.ModelID())},
		"name":     &tengo.String{Value: h.spec.Name},
	}

	intFn := func(name string, fn func(int) bool) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			n, ok := tengo.ToInt(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "int", Found: args[0].TypeName()}
			}
			return tengoBool(fn(n)), nil
		}}
	}
	intFn("heal", h.heal)
	intFn("give_money", h.giveMoney)
	intFn("add_score", h.addScore)

	values["give_weapon"] = &tengo.UserFunction{Name: "give_weapon", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		weapon, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "int", Found: args[0].TypeName()}
		}
		ammo, ok := tengo.ToInt(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "second", Expected: "int", Found: args[1].TypeName()}
		}
		return tengoBool(h.giveWeapon(weapon, ammo)), nil
	}}

	strFn := func(name string, fn func(string) bool) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			str, ok := tengo.ToString(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "string", Found: args[0].TypeName()}
			}
			return tengoBool(fn(str)), nil
		}}
	}
	strFn("grant", h.grant)
	strFn("has_ability", h.hasAbility)

	values["disable"] = &tengo.UserFunction{Name: "disable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		seconds := 0.0
		if len(args) > 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if len(args) == 1 {
			f, ok := tengo.ToFloat64(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "float", Found: args[0].TypeName()}
			}
			seconds = f
		}
		h.disable(seconds)
		return tengo.UndefinedValue, nil
	}}
	values["remove"] = &tengo.UserFunction{Name: "remove", Value: func(args ...tengo.Object) (tengo.Object, error) {
		h.remove()
		return tengo.UndefinedValue, nil
	}}
	values["enabled"] = &tengo.UserFunction{Name: "enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return tengoBool(h.p.IsEnabled()), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func tengoBool(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
