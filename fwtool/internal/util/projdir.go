// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ProjectMarkers are the files that mark the root directory of a firmware
// project.
var ProjectMarkers = []string{"fwtool.yaml", "platformio.ini"}

// FindProjectDir walks up from dir looking for one of the ProjectMarkers
// files. It returns the directory that contains the first file found or an
// empty string if there is no such directory.
func FindProjectDir(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range ProjectMarkers {
			fi, err := os.Stat(filepath.Join(dir, name))
			if err == nil {
				if fi.Mode().IsRegular() {
					return dir, nil
				}
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ChdirProject changes the current working directory to the project root
// found by FindProjectDir. If no project root can be found the working
// directory stays unchanged.
func ChdirProject() {
	wd, err := os.Getwd()
	FatalErr("", err)
	dir, err := FindProjectDir(wd)
	FatalErr("", err)
	if dir == "" || dir == wd {
		return
	}
	FatalErr("", os.Chdir(dir))
}
