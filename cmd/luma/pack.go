package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lumavm/luma/luau"
	"github.com/lumavm/luma/luau/dist"
)

func cmdPack(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	name := fs.String("name", "", "chunk name (defaults to the file name)")
	out := fs.String("o", "", "output path (defaults to <file>.lpk)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: luma pack [-name name] [-o out.lpk] <file>")
	}
	path := fs.Arg(0)

	bytecode, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Refuse to seal buffers that do not deserialize.
	if _, err := luau.Deserialize(bytecode, cfg.Settings()); err != nil {
		return fmt.Errorf("refusing to pack: %w", err)
	}

	if *name == "" {
		*name = strings.TrimSuffix(path, ".luauc")
	}
	if *out == "" {
		*out = strings.TrimSuffix(path, ".luauc") + ".lpk"
	}

	env := dist.Seal(*name, bytecode)
	data, err := dist.Marshal(env)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", env.HashString(), *out)
	return nil
}
