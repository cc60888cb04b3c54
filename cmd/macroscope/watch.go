// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch file",
		Short: "Check a crate again whenever it or an extern crate changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			run := func() {
				cfg, xopts, err := opts.load(cmd, filename)
				if err != nil {
					log.Print(err)
					return
				}
				res, err := check(cfg, xopts, filename)
				if err != nil {
					log.Print(err)
					return
				}
				err = printResult(opts.printer(cmd, cfg), opts, res, false)
				switch err {
				case nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", filename)
				case errDiagnostics:
				default:
					log.Print(err)
				}
			}

			paths := []string{filename}
			if cfg, _, err := opts.load(cmd, filename); err == nil {
				paths = append(paths, cfg.ExternPaths()...)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			run()
			return watch(ctx, paths, debounce, func(changed []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "changed: %v\n", changed)
				run()
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "wait this long after a change before checking")
	return cmd
}

// watch calls onChange with the changed files among paths each time
// some of them change, once no further change has followed for the
// debounce interval. It returns when ctx is done.
func watch(ctx context.Context, paths []string, debounce time.Duration, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace a file rather than write it, so watch
	// directories and filter events by name.
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			dirs[dir] = true
			if err := watcher.Add(dir); err != nil {
				return err
			}
		}
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !files[name] || event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if len(pending) > 0 && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending[name] = true
			timer.Reset(debounce)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			onChange(changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
