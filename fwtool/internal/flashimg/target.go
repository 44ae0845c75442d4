// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flashimg assembles the single flashable image from the bootloader,
// partition table, firmware and filesystem images.
package flashimg

import (
	"strings"

	"github.com/embeddedgo/fwtool/fwtool/internal/buildenv"
)

// TargetName is the name of the custom target that produces the merged
// flash image.
const TargetName = "buildall"

// Images returns all images of the merged flash image in the order they are
// passed to the merge tool: the extra images in configuration order, the
// firmware and the filesystem. Paths are substituted.
func Images(env *buildenv.Env) []buildenv.Image {
	l := env.Layout()
	extra := env.ExtraImages()
	images := make([]buildenv.Image, 0, len(extra)+2)
	for _, im := range extra {
		images = append(images, buildenv.Image{Offset: im.Offset, Path: env.Subst(im.Path)})
	}
	return append(
		images,
		buildenv.Image{Offset: l.FirmwareOffset, Path: env.Subst(l.Firmware)},
		buildenv.Image{Offset: l.FilesystemOffset, Path: env.Subst(l.Filesystem)},
	)
}

// MergeCommand returns the esptool merge_bin command line. The extra images
// are included verbatim, only their paths are substituted. The remaining
// variables ($PYTHONEXE, $UPLOADER, $BUILD_DIR) are left for the time the
// command is run.
func MergeCommand(env *buildenv.Env) string {
	l := env.Layout()
	args := []string{
		"$PYTHONEXE", "$UPLOADER",
		"--chip", l.Chip,
		"merge_bin",
		"--output", l.Output,
		"--flash_mode", l.FlashMode,
		"--flash_size", l.FlashSize,
	}
	for _, im := range env.ExtraImages() {
		args = append(args, im.Offset, env.Subst(im.Path))
	}
	args = append(
		args,
		l.FirmwareOffset, l.Firmware,
		l.FilesystemOffset, l.Filesystem,
	)
	return strings.Join(args, " ")
}

// Register adds the target that builds the merged flash image to env. The
// firmware and filesystem images are its dependencies.
func Register(env *buildenv.Env) error {
	l := env.Layout()
	return env.AddCustomTarget(
		TargetName,
		[]string{l.Firmware, l.Filesystem},
		MergeCommand(env),
	)
}
