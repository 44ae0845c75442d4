// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectDir(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	sub := filepath.Join(root, "src", "ui")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	dir, err := FindProjectDir(sub)
	require.NoError(t, err)
	if dir != "" {
		// Some directory above the temporary one is a project.
		assert.NotContains(t, dir, root)
	}

	require.NoError(t, os.WriteFile(filepath.Join(root, "platformio.ini"), nil, 0o644))
	dir, err = FindProjectDir(sub)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	// A directory named like a marker doesn't count.
	require.NoError(t, os.Mkdir(filepath.Join(root, "src", "fwtool.yaml"), 0o755))
	dir, err = FindProjectDir(sub)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "ui", "fwtool.yaml"), nil, 0o644))
	dir, err = FindProjectDir(sub)
	require.NoError(t, err)
	assert.Equal(t, sub, dir)
}
