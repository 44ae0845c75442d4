// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gitver

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteIfChanged writes data to a provisional file in the directory of the
// final file and then promotes it to the final name, unless the final file
// already has exactly the same content. In the latter case the final file is
// left untouched so its modification time doesn't trigger rebuilds. The
// provisional file never outlives the call.
func WriteIfChanged(final string, data []byte) (changed bool, err error) {
	dir, base := filepath.Split(final)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return false, err
	}
	provisional := tmp.Name()
	defer func() {
		if !changed {
			os.Remove(provisional)
		}
	}()
	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if err1 := tmp.Close(); err == nil {
		err = err1
	}
	if err != nil {
		return false, err
	}
	old, err := os.ReadFile(final)
	switch {
	case err == nil:
		if bytes.Equal(old, data) {
			return false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err = os.Rename(provisional, final); err != nil {
		return false, err
	}
	return true, nil
}

// Options for Stamp.
type Options struct {
	// Format of the generated file. If nil the format is inferred from the
	// extension of the final file name.
	Format *Format

	// Package name used by the Go format. If empty it's determined using
	// PackageName.
	Package string
}

// Stamp queries git using r and writes the version information to the final
// file using WriteIfChanged.
func Stamp(r Runner, final string, o Options) (info Info, changed bool, err error) {
	info = Query(r)
	f := FormatOf(final)
	if o.Format != nil {
		f = *o.Format
	}
	pkg := o.Package
	if f == Go {
		if pkg == "" {
			pkg = PackageName(filepath.Dir(final))
		} else if !ValidPackage(pkg) {
			err = fmt.Errorf("bad Go package name '%s'", pkg)
			return
		}
	}
	changed, err = WriteIfChanged(final, Render(info, f, pkg))
	return
}
