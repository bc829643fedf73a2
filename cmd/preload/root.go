package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/preload/engine/assets"
	"github.com/spaghettifunk/preload/engine/core"
	"github.com/spaghettifunk/preload/engine/loader"
)

func newRootCommand() *cobra.Command {
	var timeout time.Duration
	var watch bool

	cmd := &cobra.Command{
		Use:          "preload <manifest.toml>",
		Short:        "Load an asset bundle described by a TOML manifest",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args[0], timeout, watch)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up waiting for the bundle after this long")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and hot-reload assets when their files change")
	return cmd
}

func runLoad(path string, timeout time.Duration, watch bool) error {
	logger := core.Default()

	m, err := assets.LoadManifest(path)
	if err != nil {
		return err
	}

	orch := loader.New(m, loader.Config{Logger: logger})
	defer orch.Close()

	handle := orch.Handle()
	handle.OnProgress(func(loaded, total int64) {
		logger.Info("progress", "loaded", loaded, "total", total)
	})
	handle.OnError(func(err error) {
		logger.Error("load error", "err", err)
	})

	select {
	case <-handle.Done():
	case <-time.After(timeout):
		return fmt.Errorf("load timed out after %s", timeout)
	}

	pack, err := handle.Result()
	if err != nil {
		return err
	}
	for _, name := range pack.Names() {
		fmt.Println(name)
	}

	if watch {
		w, err := assets.NewWatcher(m, orch, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		logger.Info("watching for changes", "base", m.BasePath)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	}
	return nil
}
