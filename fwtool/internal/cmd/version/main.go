// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package version

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/fwtool/fwtool/internal/gitver"
	"github.com/embeddedgo/fwtool/fwtool/internal/util"
)

const Descr = "stamp the git version information into a generated source file"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	out := fs.String("o", "src/version.cpp", "generated `FILE`")
	format := fs.String(
		"format", "auto",
		"output format: auto (by the file extension), c or go",
	)
	pkg := fs.String("pkg", "", "Go package `NAME` (default: the package in the output directory)")
	dir := fs.String("C", "", "run in `DIR` instead of the project root directory")
	verbose := fs.Bool("v", false, "print the version information")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	if *dir != "" {
		util.FatalErr("", os.Chdir(*dir))
	} else {
		util.ChdirProject()
	}
	var o gitver.Options
	switch *format {
	case "auto":
	case "c":
		f := gitver.C
		o.Format = &f
	case "go":
		f := gitver.Go
		o.Format = &f
	default:
		util.Fatal("unknown format: %s", *format)
	}
	if *pkg != "" && !gitver.ValidPackage(*pkg) {
		util.Fatal("bad Go package name: %s", *pkg)
	}
	o.Package = *pkg
	info, changed, err := gitver.Stamp(gitver.ExecRunner{}, *out, o)
	util.FatalErr(cmd, err)
	if *verbose {
		state := "unchanged"
		if changed {
			state = "updated"
		}
		util.Warn("git_info: %s", info.GitInfo())
		util.Warn("git_url:  %s", info.GitURL())
		util.Warn("%s %s", *out, state)
	}
}
