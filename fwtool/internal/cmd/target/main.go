// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/embeddedgo/fwtool/fwtool/internal/buildenv"
	"github.com/embeddedgo/fwtool/fwtool/internal/flashimg"
	"github.com/embeddedgo/fwtool/fwtool/internal/util"
)

const Descr = "list the custom targets or run one of them"

// setup loads the project file and registers the custom targets.
func setup(cfgPath string) *buildenv.Env {
	if cfgPath == buildenv.DefaultFile {
		util.ChdirProject()
	}
	cfg, err := buildenv.Load(cfgPath)
	util.FatalErr("", err)
	env := buildenv.New(cfg)
	util.FatalErr("", flashimg.Register(env))
	return env
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [TARGET]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfgPath := fs.String("f", buildenv.DefaultFile, "project `FILE`")
	dryRun := fs.Bool("n", false, "print the command instead of running it")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	env := setup(*cfgPath)
	if fs.NArg() == 0 {
		for _, t := range env.Targets() {
			fmt.Printf("%s: %s\n", t.Name, strings.Join(t.Deps, " "))
			fmt.Printf("\t%s\n", t.Cmd)
		}
		return
	}
	t, ok := env.Target(fs.Arg(0))
	if !ok {
		util.Fatal("unknown target: %s", fs.Arg(0))
	}
	if *dryRun {
		fmt.Println(env.Command(t))
		return
	}
	util.ExitErr("", env.Run(t, os.Stdout, os.Stderr))
}
