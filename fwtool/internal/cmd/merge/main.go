// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/embeddedgo/fwtool/fwtool/internal/buildenv"
	"github.com/embeddedgo/fwtool/fwtool/internal/flashimg"
	"github.com/embeddedgo/fwtool/fwtool/internal/util"
)

const Descr = "merge the flash images into one binary or Intel HEX file"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [OUTPUT]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	cfgPath := fs.String("f", buildenv.DefaultFile, "project `FILE`")
	format := fs.String("format", "bin", "output format: bin or hex")
	pad := fs.Uint("pad", 0xff, "pad `byte` used to fill gaps between images")
	quiet := fs.Bool("quiet", false, "do not print the progress bar")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	if *pad > 0xff {
		util.Fatal("pad byte out of range: %#x", *pad)
	}
	f := flashimg.Format(*format)
	if f != flashimg.Bin && f != flashimg.Hex {
		util.Fatal("unknown format: %s", *format)
	}
	if *cfgPath == buildenv.DefaultFile {
		util.ChdirProject()
	}
	cfg, err := buildenv.Load(*cfgPath)
	util.FatalErr("", err)
	env := buildenv.New(cfg)

	flashSize, err := flashimg.ParseSize(env.Layout().FlashSize)
	util.FatalErr("", err)
	out := fs.Arg(0)
	if out == "" {
		out = env.Subst(env.Layout().Output)
		out = strings.TrimSuffix(out, filepath.Ext(out)) + "." + *format
	}
	sections, err := flashimg.ReadImages(flashimg.Images(env))
	util.FatalErr("readimages", err)

	o := flashimg.Options{FlashSize: flashSize, Pad: byte(*pad)}
	if !*quiet {
		o.Progress = os.Stderr
	}
	of, err := os.Create(out)
	util.FatalErr("", err)
	err = flashimg.Merge(of, sections, f, o)
	if err1 := of.Close(); err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(out)
	}
	util.FatalErr("merge", err)
	if !*quiet {
		util.Warn("%s: %d images", out, len(sections))
	}
}
