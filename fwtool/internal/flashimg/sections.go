// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flashimg

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/embeddedgo/fwtool/fwtool/internal/buildenv"
)

// Section is a flash image loaded into memory.
type Section struct {
	Name   string // file the data was read from
	Offset uint64 // location of the data in the flash memory
	Data   []byte
}

func (s *Section) End() uint64 {
	return s.Offset + uint64(len(s.Data))
}

type Sections []*Section

// ParseOffset parses the flash offset. Hexadecimal (0x), octal (0o) and
// binary (0b) prefixes are accepted.
func ParseOffset(s string) (uint64, error) {
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad flash offset '%s': %w", s, err)
	}
	return u, nil
}

// ReadImages reads the image files. The returned sections keep the order of
// images.
func ReadImages(images []buildenv.Image) (Sections, error) {
	ss := make(Sections, len(images))
	for i, im := range images {
		s := &Section{Name: im.Path}
		var err error
		if s.Offset, err = ParseOffset(im.Offset); err != nil {
			return nil, err
		}
		if s.Data, err = os.ReadFile(im.Path); err != nil {
			return nil, err
		}
		ss[i] = s
	}
	return ss, nil
}

// SortByOffset sorts sections according to the Offset field.
func (ss Sections) SortByOffset() {
	sort.SliceStable(
		ss,
		func(i, j int) bool {
			return ss[i].Offset < ss[j].Offset
		},
	)
}

// Size returns the number of bytes Flatten writes for the given base.
func (ss Sections) Size(base uint64) uint64 {
	var end uint64
	for _, s := range ss {
		end = max(end, s.End())
	}
	if end < base {
		return 0
	}
	return end - base
}

// Check sorts the sections and reports an error if any two of them overlap or
// any starts before base.
func (ss Sections) Check(base uint64) error {
	ss.SortByOffset()
	pa := base
	var prev *Section
	for _, s := range ss {
		if s.Offset < pa {
			if prev == nil {
				return fmt.Errorf("%s at %#x starts before %#x", s.Name, s.Offset, base)
			}
			return fmt.Errorf(
				"%s at %#x overlaps %s at %#x (%d bytes)",
				s.Name, s.Offset, prev.Name, prev.Offset, len(prev.Data),
			)
		}
		pa = s.End()
		prev = s
	}
	return nil
}

// Flatten writes the data of sections to w according to the Offset field,
// starting from the base offset. The gaps between sections are filled with
// the pad byte.
func (ss Sections) Flatten(w io.Writer, base uint64, pad byte) (n int, err error) {
	if err = ss.Check(base); err != nil {
		return
	}
	pa := base
	var padCache []byte
	for _, s := range ss {
		m := int(s.Offset - pa)
		if m != 0 {
			m, err = w.Write(padBytes(&padCache, m, pad))
			n += m
			if err != nil {
				return
			}
			pa += uint64(m)
		}
		m, err = w.Write(s.Data)
		n += m
		if err != nil {
			return
		}
		pa += uint64(m)
	}
	return
}

// padBytes returns the slice containing n bytes equal b.
func padBytes(cache *[]byte, n int, b byte) []byte {
	if len(*cache) < n {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
