package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running interaction scripts.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// A missing directory is not an error; the engine then has no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load interaction scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically function definitions.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua source: %w", err)
	}
	return nil
}

// Has reports whether a global Lua function with the given name exists.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// InteractContext is what a script sees when an agent walks up to an entity.
type InteractContext struct {
	EntityID   int32
	EntityName string
	AgentID    uint64
	AgentName  string
	X, Z       int // entity tile
}

// Grant is an item a script hands to the agent.
type Grant struct {
	Name   string
	Amount int32
}

// InteractResult is read back from the table the script returns.
type InteractResult struct {
	Remove  bool   // take the entity off its tile
	Message string // shown to the player, may be empty
	Give    []Grant
}

// Interact calls the global Lua function fn with a context table
//
//	{ entity = {id, name, x, z}, agent = {id, name} }
//
// and expects { remove = bool, message = string, give = {{name, amount}...} }.
// A missing function or a script error is logged and yields the zero result.
func (e *Engine) Interact(fn string, ctx InteractContext) InteractResult {
	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		e.log.Warn("lua interaction function not found", zap.String("name", fn))
		return InteractResult{}
	}

	t := e.vm.NewTable()

	ent := e.vm.NewTable()
	ent.RawSetString("id", lua.LNumber(ctx.EntityID))
	ent.RawSetString("name", lua.LString(ctx.EntityName))
	ent.RawSetString("x", lua.LNumber(ctx.X))
	ent.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("entity", ent)

	agent := e.vm.NewTable()
	agent.RawSetString("id", lua.LNumber(ctx.AgentID))
	agent.RawSetString("name", lua.LString(ctx.AgentName))
	t.RawSetString("agent", agent)

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua interaction error", zap.String("func", fn), zap.Error(err))
		return InteractResult{}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		if result != lua.LNil {
			e.log.Error("lua interaction returned non-table", zap.String("func", fn))
		}
		return InteractResult{}
	}

	res := InteractResult{
		Remove:  lua.LVAsBool(rt.RawGetString("remove")),
		Message: lStr(rt, "message"),
	}
	if give, ok := rt.RawGetString("give").(*lua.LTable); ok {
		give.ForEach(func(_, v lua.LValue) {
			g, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			amount := int32(lua.LVAsNumber(g.RawGetString("amount")))
			if amount <= 0 {
				amount = 1
			}
			res.Give = append(res.Give, Grant{Name: lStr(g, "name"), Amount: amount})
		})
	}
	return res
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	return lua.LVAsString(v)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
