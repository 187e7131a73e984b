package main

import (
	"fmt"

	"github.com/lumavm/luma/luau"
)

func cmdDump(cfg *Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: luma dump <file>")
	}

	bytecode, env, err := loadBytecodeFile(args[0])
	if err != nil {
		return err
	}

	module, err := luau.Deserialize(bytecode, cfg.Settings())
	if err != nil {
		return err
	}
	if env != nil {
		fmt.Printf("; chunk %s (%s)\n", env.HashString(), env.Name)
	}
	fmt.Print(module.Disassemble())
	return nil
}
