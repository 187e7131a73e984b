package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumavm/luma/luau"
	"github.com/lumavm/luma/luau/dist"
	"github.com/lumavm/luma/store"
)

// loadBytecodeFile reads a raw .luauc file or a sealed .lpk chunk and
// returns the bytecode plus the envelope when there was one.
func loadBytecodeFile(path string) ([]byte, *dist.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, ".lpk") {
		env, err := dist.Unmarshal(data)
		if err != nil {
			return nil, nil, err
		}
		return env.Bytecode, env, nil
	}
	return data, nil, nil
}

func cmdRun(cfg *Config, args []string, trace bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: luma run <file>")
	}

	bytecode, env, err := loadBytecodeFile(args[0])
	if err != nil {
		return err
	}

	settings := cfg.Settings()
	if trace {
		settings.Hooks.Step = func(ctx *luau.HookContext) {
			inst := ctx.Proto.Code[ctx.PC]
			log.Debugf("proto %d pc %d: %s", ctx.Proto.ID, ctx.PC, inst.Opcode)
		}
	}

	program, err := luau.LoadBytecode(bytecode, nil, settings)
	if err != nil {
		return err
	}
	results, runErr := program.Call()

	if cfg.Store.Path != "" {
		if err := recordRun(cfg, env, bytecode, results, runErr); err != nil {
			log.Warningf("record run: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	for _, v := range results {
		fmt.Println(formatResult(v))
	}
	return nil
}

// recordRun persists the chunk (sealing raw bytecode on the fly) and the
// outcome of this execution.
func recordRun(cfg *Config, env *dist.Envelope, bytecode []byte, results []luau.Value, runErr error) error {
	if env == nil {
		env = dist.Seal("", bytecode)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveChunk(env); err != nil {
		return err
	}

	outcome := formatResults(results)
	if runErr != nil {
		outcome = runErr.Error()
	}
	id, err := db.RecordRun(env.HashString(), runErr == nil, outcome)
	if err != nil {
		return err
	}
	log.Infof("recorded run %s for chunk %s", id, env.HashString())
	return nil
}

func formatResult(v luau.Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatResults(results []luau.Value) string {
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = formatResult(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
