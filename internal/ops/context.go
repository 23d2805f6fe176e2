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

package ops

import (
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

// An execution context for operators
type Context struct {
	Log             io.Writer
	MemoryMB        int  // memory.TotalMemory()/1024/1024
	HistoryMemoryMB int  // MemoryMB*7/10
	MaxThreads      int  `json:"maxThreads"`
	RestrictPaths   bool // only relative paths inside the working directory tree
}

func NewContext(log io.Writer) *Context {
	memoryMB := int(memory.TotalMemory() / 1024 / 1024)
	maxThreads := cpuid.CPU.LogicalCores
	if maxThreads < 1 {
		maxThreads = runtime.GOMAXPROCS(0)
	}
	return &Context{
		Log:             log,
		MemoryMB:        memoryMB,
		HistoryMemoryMB: memoryMB * 7 / 10,
		MaxThreads:      maxThreads,
	}
}

// Prints a one-line summary of the host
func (c *Context) LogHost() {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}
	fmt.Fprintf(c.Log, "Running on %s with %d threads and %d MiB of memory (%d MiB for histories)\n",
		brand, c.MaxThreads, c.MemoryMB, c.HistoryMemoryMB)
}

// Returns an error unless the path is allowed in this context
func (c *Context) checkPath(p string) error {
	if c.RestrictPaths && !isPathAllowed(p) {
		return errPathNotAllowed(p)
	}
	return nil
}
