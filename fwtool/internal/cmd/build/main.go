// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"os"
	"os/exec"

	"github.com/embeddedgo/fwtool/fwtool/internal/gitver"
	"github.com/embeddedgo/fwtool/fwtool/internal/util"
)

const Descr = "stamp the version and run `pio run` with the remaining arguments"

// VersionFile is the file stamped before the build.
const VersionFile = "src/version.cpp"

func Main(cmd string, args []string) {
	util.ChdirProject()
	_, _, err := gitver.Stamp(gitver.ExecRunner{}, VersionFile, gitver.Options{})
	util.FatalErr("version", err)
	pioCmd, err := exec.LookPath("pio")
	util.FatalErr("", err)
	c := &exec.Cmd{
		Path:   pioCmd,
		Args:   append([]string{pioCmd, "run"}, args...),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	util.ExitErr("", c.Run())
}
