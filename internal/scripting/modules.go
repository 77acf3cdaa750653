package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/game/battle"
)

// RegisterModules installs the arena.* helper table into L:
//
//	arena.log(msg)              -- info log tagged with the script source
//	arena.stage_name(stage)     -- "EGG", "BABY", "TEEN" or "ADULT"
//	arena.max_damage(stage)     -- per-hit damage ceiling for the stage
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(mod, "stage_name", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(battle.Stage(L.CheckInt(1)).Normalized().String()))
		return 1
	}))
	L.SetField(mod, "max_damage", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(battle.MaxDamage(battle.Stage(L.CheckInt(1)))))
		return 1
	}))
	L.SetGlobal("arena", mod)
}
