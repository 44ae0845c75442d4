// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buildenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the name of the project file looked for in the project
// directory.
const DefaultFile = "fwtool.yaml"

// Image describes a flash image: the file at Path is to be written to the
// flash memory at Offset. Offset is kept as written in the configuration.
//
// In YAML an image can be written as a two element sequence:
//
//	- [0x1000, $BUILD_DIR/bootloader.bin]
//
// or as a mapping:
//
//	- offset: 0x1000
//	  path: $BUILD_DIR/bootloader.bin
type Image struct {
	Offset string `yaml:"offset"`
	Path   string `yaml:"path"`
}

func (im *Image) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return fmt.Errorf(
				"line %d: image must be [OFFSET, PATH], got %d elements",
				n.Line, len(n.Content),
			)
		}
		// Offsets are decoded as strings so 0x1000 stays a hex literal.
		im.Offset = n.Content[0].Value
		im.Path = n.Content[1].Value
	case yaml.MappingNode:
		type plain Image
		if err := n.Decode((*plain)(im)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: bad image description", n.Line)
	}
	if im.Offset == "" || im.Path == "" {
		return fmt.Errorf("line %d: image requires both offset and path", n.Line)
	}
	return nil
}

// Layout describes the flash memory layout and the parameters passed to the
// merge tool.
type Layout struct {
	Chip             string `yaml:"chip"`
	FlashMode        string `yaml:"flash_mode"`
	FlashSize        string `yaml:"flash_size"`
	FirmwareOffset   string `yaml:"firmware_offset"`
	Firmware         string `yaml:"firmware"`
	FilesystemOffset string `yaml:"filesystem_offset"`
	Filesystem       string `yaml:"filesystem"`
	Output           string `yaml:"output"`
}

// DefaultLayout is the ESP32-S3 layout with 8 MB flash and a LittleFS
// partition at 0x670000.
var DefaultLayout = Layout{
	Chip:             "esp32s3",
	FlashMode:        "dio",
	FlashSize:        "8MB",
	FirmwareOffset:   "0x10000",
	Firmware:         "$BUILD_DIR/firmware.bin",
	FilesystemOffset: "0x670000",
	Filesystem:       "$BUILD_DIR/littlefs.bin",
	Output:           "$BUILD_DIR/merged-flash.bin",
}

type Config struct {
	// Environment is the name of the build environment, used to derive the
	// default BUILD_DIR.
	Environment string `yaml:"environment"`

	// Vars are the build variables. They take precedence over the process
	// environment.
	Vars map[string]string `yaml:"vars"`

	// ExtraImages are flashed together with the firmware and filesystem
	// images, usually the bootloader and the partition table.
	ExtraImages []Image `yaml:"flash_extra_images"`

	Layout Layout `yaml:"layout"`
}

// Load reads the YAML project file. If the file is the DefaultFile and it
// doesn't exist the default configuration is returned.
func Load(path string) (Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	case path == DefaultFile && errors.Is(err, fs.ErrNotExist):
	default:
		return c, err
	}
	l, d := &c.Layout, DefaultLayout
	setDefault(&l.Chip, d.Chip)
	setDefault(&l.FlashMode, d.FlashMode)
	setDefault(&l.FlashSize, d.FlashSize)
	setDefault(&l.FirmwareOffset, d.FirmwareOffset)
	setDefault(&l.Firmware, d.Firmware)
	setDefault(&l.FilesystemOffset, d.FilesystemOffset)
	setDefault(&l.Filesystem, d.Filesystem)
	setDefault(&l.Output, d.Output)
	return c, nil
}

func setDefault(p *string, v string) {
	if *p == "" {
		*p = v
	}
}
