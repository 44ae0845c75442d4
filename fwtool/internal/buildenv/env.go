// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buildenv implements the minimal build environment used by fwtool:
// build variables with $VAR substitution, the flash layout, the extra flash
// images and a registry of custom targets.
package buildenv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Target is a custom target: a command that can be run on demand.
type Target struct {
	Name string
	Deps []string // files the command reads, not substituted
	Cmd  string   // shell command, not substituted
}

var ErrDupTarget = errors.New("target already registered")

// Env is the build environment.
type Env struct {
	cfg     Config
	getenv  func(string) string
	targets map[string]Target
}

// New returns the environment described by cfg. Variables not defined in cfg
// are looked up in the process environment.
func New(cfg Config) *Env {
	return &Env{cfg: cfg, getenv: os.Getenv, targets: make(map[string]Target)}
}

// Layout returns the flash layout.
func (e *Env) Layout() Layout {
	return e.cfg.Layout
}

// ExtraImages returns the extra flash images in configuration order.
func (e *Env) ExtraImages() []Image {
	return slices.Clone(e.cfg.ExtraImages)
}

// Get returns the value of the named build variable.
func (e *Env) Get(name string) string {
	if v, ok := e.cfg.Vars[name]; ok {
		return v
	}
	if v := e.getenv(name); v != "" {
		return v
	}
	switch name {
	case "BUILD_DIR":
		env := e.cfg.Environment
		if env == "" {
			return filepath.ToSlash(filepath.Join(".pio", "build"))
		}
		return filepath.ToSlash(filepath.Join(".pio", "build", env))
	case "PYTHONEXE":
		return "python3"
	case "UPLOADER":
		return "-m esptool"
	}
	return ""
}

// maxSubstDepth limits the expansion of variables that refer to variables.
const maxSubstDepth = 16

// Subst replaces $NAME and ${NAME} in s with the values of the build
// variables. Undefined variables are replaced with empty strings. Values
// are substituted again if they refer to other variables. $$ stands for a
// single $.
func (e *Env) Subst(s string) string {
	return e.subst(s, 0)
}

func (e *Env) subst(s string, depth int) string {
	if depth >= maxSubstDepth || !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '$')
		if i < 0 || i+1 == len(s) {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+1:]
		var name string
		switch c := s[0]; {
		case c == '$':
			b.WriteByte('$')
			s = s[1:]
			continue
		case c == '{':
			k := strings.IndexByte(s, '}')
			if k < 0 {
				b.WriteByte('$')
				b.WriteString(s)
				return b.String()
			}
			name, s = s[1:k], s[k+1:]
		case isNameStart(c):
			k := 1
			for k < len(s) && isNameChar(s[k]) {
				k++
			}
			name, s = s[:k], s[k:]
		default:
			b.WriteByte('$')
			continue
		}
		b.WriteString(e.subst(e.Get(name), depth+1))
	}
}

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || '0' <= c && c <= '9'
}

// AddCustomTarget registers the target named name.
func (e *Env) AddCustomTarget(name string, deps []string, cmd string) error {
	if _, ok := e.targets[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDupTarget)
	}
	e.targets[name] = Target{name, slices.Clone(deps), cmd}
	return nil
}

// Target returns the registered target.
func (e *Env) Target(name string) (Target, bool) {
	t, ok := e.targets[name]
	return t, ok
}

// Targets returns all registered targets sorted by name.
func (e *Env) Targets() []Target {
	ts := make([]Target, 0, len(e.targets))
	for _, t := range e.targets {
		ts = append(ts, t)
	}
	slices.SortFunc(ts, func(a, b Target) int { return strings.Compare(a.Name, b.Name) })
	return ts
}

// Command returns the substituted command of t.
func (e *Env) Command(t Target) string {
	return e.Subst(t.Cmd)
}

// Run runs the substituted command of t using the system shell. If the
// command fails the returned error wraps *exec.ExitError.
func (e *Env) Run(t Target, stdout, stderr io.Writer) error {
	line := e.Command(t)
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", line)
	} else {
		cmd = exec.Command("sh", "-c", line)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	return nil
}
