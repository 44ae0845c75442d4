// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flashimg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/schollz/progressbar/v3"
)

type Format string

const (
	Bin Format = "bin" // raw binary starting at the flash offset 0
	Hex Format = "hex" // Intel HEX
)

// ParseSize parses the flash size as used by esptool: 4MB, 8MB, 256KB. Plain
// numbers are treated as bytes. The keep and detect sizes return 0 which means
// the size is unknown.
func ParseSize(s string) (uint64, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if u == "KEEP" || u == "DETECT" {
		return 0, nil
	}
	shift := 0
	for _, suf := range []struct {
		s     string
		shift int
	}{{"MB", 20}, {"M", 20}, {"KB", 10}, {"K", 10}} {
		if strings.HasSuffix(u, suf.s) {
			u, shift = strings.TrimSuffix(u, suf.s), suf.shift
			break
		}
	}
	n, err := strconv.ParseUint(u, 0, 64)
	if err != nil || n<<shift>>shift != n {
		return 0, fmt.Errorf("bad flash size '%s'", s)
	}
	return n << shift, nil
}

type Options struct {
	FlashSize uint64 // 0 means no limit
	Pad       byte   // used to fill the gaps in the Bin format

	// Progress, if not nil, receives a progress bar while the Bin image is
	// written.
	Progress io.Writer
}

// Merge writes sections to w as one image in the format f.
func Merge(w io.Writer, ss Sections, f Format, o Options) error {
	if err := ss.Check(0); err != nil {
		return err
	}
	size := ss.Size(0)
	if o.FlashSize != 0 && size > o.FlashSize {
		s := ss[len(ss)-1]
		return fmt.Errorf(
			"%s at %#x ends at %#x beyond the flash size %#x",
			s.Name, s.Offset, s.End(), o.FlashSize,
		)
	}
	switch f {
	case Bin:
		if o.Progress != nil {
			bar := progressbar.NewOptions64(
				int64(size),
				progressbar.OptionSetWriter(o.Progress),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetDescription("merging"),
			)
			w = io.MultiWriter(w, bar)
			defer fmt.Fprintln(o.Progress)
		}
		_, err := ss.Flatten(w, 0, o.Pad)
		return err
	case Hex:
		mem := gohex.NewMemory()
		for _, s := range ss {
			if s.End() > 1<<32 {
				return fmt.Errorf("%s at %#x doesn't fit in 32-bit address space", s.Name, s.Offset)
			}
			if err := mem.AddBinary(uint32(s.Offset), s.Data); err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		bw := bufio.NewWriter(w)
		if err := mem.DumpIntelHex(bw, 16); err != nil {
			return err
		}
		return bw.Flush()
	}
	return fmt.Errorf("unknown format: %s", f)
}
