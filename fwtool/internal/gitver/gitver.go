// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gitver obtains the version information of the current git working
// copy and stamps it into a generated source file.
package gitver

import (
	"bytes"
	"os/exec"
)

// NoGit is used instead of the branch/revision and the remote URL if git is
// not installed or the directory is not a git working copy.
const NoGit = " (noGit)"

// Runner runs a git command and returns its standard output with the
// surrounding white space trimmed.
type Runner interface {
	Git(args ...string) (string, error)
}

// ExecRunner runs the git executable found in PATH in the Dir directory (the
// current working directory if Dir is empty).
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(out)), nil
}

// Info describes the state of the working copy.
type Info struct {
	Unavailable bool // git is not available, other fields are empty

	Branch   string // abbreviated branch name, HEAD if detached
	Revision string // short commit hash
	Dirty    bool   // tracked files have uncommitted modifications
	URL      string // URL of the origin remote
}

// Query asks git about the working copy. Any git failure is treated as if
// there is no git at all and results in an Info with Unavailable set.
func Query(r Runner) Info {
	if _, err := r.Git("status"); err != nil {
		return Info{Unavailable: true}
	}
	var (
		info Info
		err  error
	)
	if info.Branch, err = r.Git("rev-parse", "--abbrev-ref", "HEAD"); err != nil {
		return Info{Unavailable: true}
	}
	if info.Revision, err = r.Git("rev-parse", "--short", "HEAD"); err != nil {
		return Info{Unavailable: true}
	}
	modified, err := r.Git("status", "-uno", "-s")
	if err != nil {
		return Info{Unavailable: true}
	}
	info.Dirty = modified != ""
	if info.URL, err = r.Git("config", "--get", "remote.origin.url"); err != nil {
		return Info{Unavailable: true}
	}
	return info
}

// GitInfo returns BRANCH-REVISION with the -dirty suffix appended if the
// working copy contains uncommitted changes.
func (i Info) GitInfo() string {
	if i.Unavailable {
		return NoGit
	}
	s := i.Branch + "-" + i.Revision
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// GitURL returns the URL of the origin remote.
func (i Info) GitURL() string {
	if i.Unavailable {
		return NoGit
	}
	return i.URL
}

func (i Info) String() string {
	return i.GitInfo()
}
