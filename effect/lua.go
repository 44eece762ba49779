package effect

import (
	"fmt"

	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// LuaScript runs a Lua pickup script in its own VM.
// Single-goroutine access only (simulation loop).
type LuaScript struct {
	base
	vm *lua.LState
	fn lua.LValue
}

func NewLuaScript(env Env, spec prefabs.PickupSpec, src []byte) (*LuaScript, error) {
	vm := lua.NewState()
	if err := vm.DoString(string(src)); err != nil {
		vm.Close()
		return nil, fmt.Errorf("effect: load %s: %w", spec.Script, err)
	}
	fn := vm.GetGlobal(ScriptHandler)
	if fn.Type() != lua.LTFunction {
		vm.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, spec.Script)
	}
	return &LuaScript{base: base{env: env, spec: spec}, vm: vm, fn: fn}, nil
}

func (s *LuaScript) OnTouch(p *pickup.Pickup, t physics.Touch) {
	h := &scriptHost{base: s.base, p: p, t: t}
	wasEnabled := p.IsEnabled()
	if err := s.vm.CallByParam(lua.P{
		Fn:      s.fn,
		NRet:    0,
		Protect: true,
	}, s.engine(h), s.touch(t)); err != nil {
		s.env.logger().Warn("lua on_touch failed",
			zap.String("script", s.spec.Script),
			zap.Int("model", p.ModelID()),
			zap.Error(err))
		return
	}
	h.finish(wasEnabled)
}

// Close shuts the VM down.
func (s *LuaScript) Close() error {
	s.vm.Close()
	return nil
}

func (s *LuaScript) touch(t physics.Touch) *lua.LTable {
	tbl := s.vm.NewTable()
	tbl.RawSetString("entity", lua.LNumber(t.Entity))
	tbl.RawSetString("type", lua.LString(t.Type.String()))
	tbl.RawSetString("player", lua.LBool(t.Player))
	return tbl
}

func (s *LuaScript) engine(h *scriptHost) *lua.LTable {
	vm := s.vm
	tbl := vm.NewTable()
	tbl.RawSetString("amount", lua.LNumber(h.spec.Amount))
	tbl.RawSetString("weapon", lua.LNumber(h.spec.Weapon))
	tbl.RawSetString("cooldown", lua.LNumber(h.spec.CooldownDuration().Seconds()))
	tbl.RawSetString("model", lua.LNumber(h.p.ModelID()))
	tbl.RawSetString("name", lua.LString(h.spec.Name))

	intFn := func(name string, fn func(int) bool) {
		tbl.RawSetString(name, vm.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LBool(fn(L.CheckInt(1))))
			return 1
		}))
	}
	intFn("heal", h.heal)
	intFn("give_money", h.giveMoney)
	intFn("add_score", h.addScore)

	strFn := func(name string, fn func(string) bool) {
		tbl.RawSetString(name, vm.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LBool(fn(L.CheckString(1))))
			return 1
		}))
	}
	strFn("grant", h.grant)
	strFn("has_ability", h.hasAbility)

	tbl.RawSetString("give_weapon", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(h.giveWeapon(L.CheckInt(1), L.CheckInt(2))))
		return 1
	}))
	tbl.RawSetString("disable", vm.NewFunction(func(L *lua.LState) int {
		h.disable(float64(L.OptNumber(1, 0)))
		return 0
	}))
	tbl.RawSetString("remove", vm.NewFunction(func(L *lua.LState) int {
		h.remove()
		return 0
	}))
	tbl.RawSetString("enabled", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(h.p.IsEnabled()))
		return 1
	}))
	return tbl
}
