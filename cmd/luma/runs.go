package main

import (
	"fmt"

	"github.com/lumavm/luma/store"
)

func cmdRuns(cfg *Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: luma runs <chunk-hash>")
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("no store configured (use -store or [store] in luma.toml)")
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RunsFor(args[0])
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		status := "ok"
		if !r.OK {
			status = "error"
		}
		fmt.Printf("%s  %s  %-5s  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, status, r.Result)
	}
	return nil
}
