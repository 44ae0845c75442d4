// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buildenv

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectYAML = `
environment: m5dial
vars:
  PLATFORMIO_PACKAGES: /home/dev/.platformio/packages
  BOOT_APP0: $PLATFORMIO_PACKAGES/framework-arduinoespressif32/tools/partitions/boot_app0.bin
flash_extra_images:
  - [0x0000, $BUILD_DIR/bootloader.bin]
  - [0x8000, "$BUILD_DIR/partitions.bin"]
  - offset: 0xe000
    path: ${BOOT_APP0}
layout:
  flash_size: 16MB
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func newTestEnv(cfg Config, osenv map[string]string) *Env {
	e := New(cfg)
	e.getenv = func(name string) string { return osenv[name] }
	return e
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, "fwtool.yaml", projectYAML))
	require.NoError(t, err)
	assert.Equal(t, "m5dial", cfg.Environment)
	assert.Equal(t, []Image{
		{"0x0000", "$BUILD_DIR/bootloader.bin"},
		{"0x8000", "$BUILD_DIR/partitions.bin"},
		{"0xe000", "${BOOT_APP0}"},
	}, cfg.ExtraImages)

	want := DefaultLayout
	want.FlashSize = "16MB"
	assert.Equal(t, want, cfg.Layout)
}

func TestLoadBadImage(t *testing.T) {
	for _, y := range []string{
		"flash_extra_images:\n  - [0x1000]\n",
		"flash_extra_images:\n  - [0x1000, a.bin, b.bin]\n",
		"flash_extra_images:\n  - 0x1000\n",
		"flash_extra_images:\n  - offset: 0x1000\n",
	} {
		_, err := Load(writeFile(t, "fwtool.yaml", y))
		assert.Error(t, err, y)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)
	cfg, err := Load(DefaultFile)
	require.NoError(t, err)
	assert.Empty(t, cfg.ExtraImages)
	assert.Equal(t, DefaultLayout, cfg.Layout)
}

func TestGet(t *testing.T) {
	e := newTestEnv(Config{}, nil)
	assert.Equal(t, ".pio/build", e.Get("BUILD_DIR"))
	assert.Equal(t, "python3", e.Get("PYTHONEXE"))
	assert.Equal(t, "-m esptool", e.Get("UPLOADER"))
	assert.Equal(t, "", e.Get("UNDEFINED"))

	e = newTestEnv(Config{Environment: "m5dial"}, map[string]string{"PYTHONEXE": "/usr/bin/python3.12"})
	assert.Equal(t, ".pio/build/m5dial", e.Get("BUILD_DIR"))
	assert.Equal(t, "/usr/bin/python3.12", e.Get("PYTHONEXE"))

	e = newTestEnv(
		Config{Vars: map[string]string{"PYTHONEXE": "py"}},
		map[string]string{"PYTHONEXE": "/usr/bin/python3.12"},
	)
	assert.Equal(t, "py", e.Get("PYTHONEXE"), "config variables take precedence")
}

func TestSubst(t *testing.T) {
	cfg, err := Load(writeFile(t, "fwtool.yaml", projectYAML))
	require.NoError(t, err)
	e := newTestEnv(cfg, map[string]string{"HOME": "/home/dev"})
	for _, c := range []struct{ in, out string }{
		{"", ""},
		{"no vars", "no vars"},
		{"$BUILD_DIR/firmware.bin", ".pio/build/m5dial/firmware.bin"},
		{"${BUILD_DIR}x", ".pio/build/m5dialx"},
		{"$BUILD_DIRx", ""},
		{"$HOME/.platformio", "/home/dev/.platformio"},
		{"${BOOT_APP0}", "/home/dev/.platformio/packages/framework-arduinoespressif32/tools/partitions/boot_app0.bin"},
		{"cost $$5", "cost $5"},
		{"trailing $", "trailing $"},
		{"$ alone", "$ alone"},
		{"${UNTERMINATED", "${UNTERMINATED"},
		{"$1", "$1"},
	} {
		assert.Equal(t, c.out, e.Subst(c.in), c.in)
	}
}

func TestSubstLoop(t *testing.T) {
	e := newTestEnv(Config{Vars: map[string]string{"A": "<$B>", "B": "$A"}}, nil)
	assert.NotPanics(t, func() { e.Subst("$A") })
}

func TestTargets(t *testing.T) {
	e := newTestEnv(Config{}, nil)
	require.NoError(t, e.AddCustomTarget("zeta", nil, "true"))
	require.NoError(t, e.AddCustomTarget("buildall", []string{"$BUILD_DIR/firmware.bin"}, "echo $BUILD_DIR"))
	err := e.AddCustomTarget("buildall", nil, "false")
	assert.ErrorIs(t, err, ErrDupTarget)

	ts := e.Targets()
	require.Len(t, ts, 2)
	assert.Equal(t, "buildall", ts[0].Name)
	assert.Equal(t, "zeta", ts[1].Name)

	tg, ok := e.Target("buildall")
	require.True(t, ok)
	assert.Equal(t, []string{"$BUILD_DIR/firmware.bin"}, tg.Deps)
	assert.Equal(t, "echo .pio/build", e.Command(tg))
	_, ok = e.Target("upload")
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := newTestEnv(Config{Vars: map[string]string{"MSG": "merged"}}, nil)
	require.NoError(t, e.AddCustomTarget("ok", nil, "echo $MSG"))
	require.NoError(t, e.AddCustomTarget("fail", nil, "exit 3"))

	var out bytes.Buffer
	tg, _ := e.Target("ok")
	require.NoError(t, e.Run(tg, &out, &out))
	assert.Equal(t, "merged\n", out.String())

	tg, _ = e.Target("fail")
	err := e.Run(tg, &out, &out)
	var ee *exec.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.ExitCode())
}
