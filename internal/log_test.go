// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTeesToFile(t *testing.T) {
	var stdout bytes.Buffer
	logStdout = &stdout
	defer func() { logStdout = os.Stdout }()

	fileName := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, LogAlsoToFile(fileName))
	LogPrintf("%d: frame %s\n", 3, "ok")
	LogPrintln("done")
	require.NoError(t, LogClose())

	assert.Equal(t, "3: frame ok\ndone\n", stdout.String())
	bs, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, "3: frame ok\ndone\n", string(bs))

	// closed file no longer receives output
	LogPrint("more")
	bs, err = os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, "3: frame ok\ndone\n", string(bs))
	assert.NoError(t, LogClose())
}

func TestLogSyncFlushesFile(t *testing.T) {
	var stdout bytes.Buffer
	logStdout = &stdout
	defer func() { logStdout = os.Stdout }()

	LogSync() // without a log file
	fileName := filepath.Join(t.TempDir(), "serve.log")
	require.NoError(t, LogAlsoToFile(fileName))
	LogPrintln("Serving on :8080")
	LogSync()

	bs, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, "Serving on :8080\n", string(bs))
	assert.NoError(t, LogClose())
}
