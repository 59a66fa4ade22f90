// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/tfctl/tfdelta/internal/cacheutil"
	"github.com/tfctl/tfdelta/internal/command"
	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/version"
)

// Exit codes.
const (
	exitOK   = 0
	exitInit = 1
	exitRun  = 2
)

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string, w io.Writer) bool {
	if slices.Contains(args, "--version") || slices.Contains(args, "-v") {
		fmt.Fprintln(w, version.String())
		return true
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// purgeCache drops cached state bodies older than cache.clean hours. Zero
// or a missing key keeps everything.
func purgeCache() {
	if !cacheutil.Enabled() {
		return
	}
	hours, err := config.GetInt("cache.clean", 0)
	if err != nil || hours <= 0 {
		return
	}
	if err := cacheutil.Purge(time.Duration(hours) * time.Hour); err != nil {
		log.Debugf("cache purge err: err=%v", err)
	}
}

func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.InitLogger()
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args, stdout) {
		return exitOK
	}
	args = handleNakedCommand(args)

	app, err := command.InitApp(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		log.Debugf("app init err: err=%v", err)
		return exitInit
	}
	app.Writer = stdout
	app.ErrWriter = stderr

	purgeCache()

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(stderr, err)
		log.Debugf("app run err: err=%v", err)
		return exitRun
	}

	return exitOK
}
