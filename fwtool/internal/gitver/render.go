// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gitver

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

type Format int

const (
	C  Format = iota // const char* declarations, usable from C and C++
	Go               // Go constants
)

// FormatOf infers the output format from the file name extension.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".go") {
		return Go
	}
	return C
}

func (f Format) String() string {
	switch f {
	case C:
		return "c"
	case Go:
		return "go"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// Render returns the content of the generated source file. The pkg parameter
// is used only by the Go format.
func Render(info Info, f Format, pkg string) []byte {
	gitInfo := strconv.Quote(info.GitInfo())
	gitURL := strconv.Quote(info.GitURL())
	buf := new(bytes.Buffer)
	switch f {
	case Go:
		if pkg == "" {
			pkg = "main"
		}
		buf.WriteString("// Code generated by fwtool version. DO NOT EDIT.\n\n")
		fmt.Fprintf(buf, "package %s\n\n", pkg)
		fmt.Fprintf(buf, "const (\n\tGitInfo = %s\n\tGitURL = %s\n)\n", gitInfo, gitURL)
		if src, err := format.Source(buf.Bytes()); err == nil {
			return src
		}
	default:
		fmt.Fprintf(buf, "const char* git_info     = %s;\n", gitInfo)
		fmt.Fprintf(buf, "const char* git_url      = %s;\n", gitURL)
	}
	return buf.Bytes()
}

// PackageName returns the name of the Go package in dir. If dir contains no
// loadable Go package the sanitized base name of dir is returned.
func PackageName(dir string) string {
	cfg := &packages.Config{Mode: packages.NeedName, Dir: dir}
	pkgs, err := packages.Load(cfg, ".")
	if err == nil && len(pkgs) == 1 && pkgs[0].Name != "" {
		return pkgs[0].Name
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "main"
	}
	name := strings.Map(
		func(r rune) rune {
			switch {
			case r == '_', 'a' <= r && r <= 'z', '0' <= r && r <= '9':
				return r
			case 'A' <= r && r <= 'Z':
				return r + 'a' - 'A'
			}
			return -1
		},
		filepath.Base(abs),
	)
	if !ValidPackage(name) {
		return "main"
	}
	return name
}

// ValidPackage reports whether name can be used in a package clause.
func ValidPackage(name string) bool {
	return token.IsIdentifier(name) && name != "_"
}
