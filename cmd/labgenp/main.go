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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	lg "github.com/mlnoga/labgenp/internal"
	"github.com/mlnoga/labgenp/internal/labgen"
	"github.com/mlnoga/labgenp/internal/ops"
	"github.com/mlnoga/labgenp/internal/rest"
	"github.com/pkg/errors"
)

const version = "0.3.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var s = flag.Int("s", labgen.DefaultS, "history capacity S, the number of low-motion samples kept per region")
var n = flag.Int("n", labgen.DefaultN, "aggregation parameter N, kernel size is (min(height,width)/N)|1")
var def = flag.Bool("default", false, fmt.Sprintf("use the default parameter set S=%d N=%d, overriding -s and -n", labgen.DefaultS, labgen.DefaultN))
var segments = flag.Int("segments", 0, "split the frame into `k`xk patches with one history each, 0=pixel granularity")
var threads = flag.Int("threads", 0, "number of worker threads, 0=number of logical cores")

var out = flag.String("out", "background.png", "save background to `file`, or to output_<S>_<N>.png if a directory")
var log = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var motion = flag.String("motion", "", "save motion maps with given filename pattern, e.g. `motion%04d.png`")
var qom = flag.String("qom", "", "save quantities of motion with given filename pattern, e.g. `qom%04d.png`")
var statsCSV = flag.String("statsCSV", "", "write per-frame motion statistics to CSV `file`")
var statsPlot = flag.String("statsPlot", "", "plot per-frame motion statistics to image `file`, e.g. stats.png or stats.svg")

var record = flag.String("record", "", "record input, quantities of motion and background side by side to a video `file` or image pattern, e.g. `rec%04d.png`")
var fps = flag.Float64("fps", 25, "frame rate of the recorded video")
var vwidth = flag.Int("vwidth", 0, "width of each recorded tile in pixels, 0=auto")
var vheight = flag.Int("vheight", 0, "height of each recorded tile in pixels, 0=auto")
var keepRatio = flag.Bool("keepRatio", true, "keep the aspect ratio of recorded tiles")

var addr = flag.String("addr", ":8080", "listen on `address` when serving")
var chroot = flag.String("chroot", "", "chroot to `dir` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "change to user `id` before serving, -1=keep")

func main() {
	logWriter := lg.LogWriter()
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `labgenp Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (background|serve|legal|version|help) (img0.png ... imgn.png | video.avi)

Commands:
  background Estimate the background of a frame sequence, given as image files in temporal order or as one video
  serve      Serve the REST interface
  legal      Show license and attribution information
  version    Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}
	if *def {
		*s, *n = labgen.DefaultS, labgen.DefaultN
	}
	outFile := ops.OutputFileName(*out, *s, *n)

	// Initialize logging to file in addition to stdout, if selected
	if *log == "%auto" {
		if args[0] == "background" && outFile != "" {
			*log = strings.TrimSuffix(outFile, filepath.Ext(outFile)) + ".log"
		} else {
			*log = ""
		}
	}
	if *log != "" {
		if err := lg.LogAlsoToFile(*log); err != nil {
			lg.LogFatalf("Unable to open logfile '%s'\n", *log)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			lg.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			lg.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	c := ops.NewContext(logWriter)
	if *threads > 0 {
		c.MaxThreads = *threads
	}

	var err error
	switch args[0] {
	case "background":
		c.LogHost()
		err = cmdBackground(args[1:], outFile, c)

	case "serve":
		if err = rest.MakeSandbox(logWriter, *chroot, *setuid); err == nil {
			fmt.Fprintf(logWriter, "Serving on %s\n", *addr)
			lg.LogSync() // the server runs until killed
			err = rest.Serve(*addr, c)
		}

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	if args[0] == "background" {
		fmt.Fprintf(logWriter, "\nDone after %v\n", time.Since(start))
	}

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			lg.LogFatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			lg.LogFatal("Could not write allocation profile: ", err)
		}
	}

	if err != nil {
		lg.LogFatalf("Error: %s\n", err.Error())
	}
	lg.LogClose()
}

// Builds the background operator from the command line flags
func newOpBackground() *ops.OpBackground {
	op := ops.NewOpBackground(*s, *n, *segments)
	op.Motion = *motion
	op.QoM = *qom
	op.StatsCSV = *statsCSV
	op.StatsPlot = *statsPlot
	op.Record = *record
	op.FPS = *fps
	op.VWidth = *vwidth
	op.VHeight = *vheight
	op.KeepRatio = *keepRatio
	return op
}

// Perform background estimation command
func cmdBackground(args []string, outFile string, c *ops.Context) error {
	if len(args) == 0 {
		return errors.New("need a video file or image files as input")
	}
	if outFile == "" {
		return errors.New("need an output file")
	}
	opBackground := newOpBackground()
	opSave := ops.NewOpSave(outFile)
	if err := printSettings(c.Log, opBackground); err != nil {
		return err
	}

	if len(args) == 1 && ops.IsVideoFile(args[0]) {
		fmt.Fprintf(c.Log, "Reading frames from video %s\n", args[0])
		src, err := ops.OpenVideo(args[0])
		if err != nil {
			return err
		}
		defer src.Close()
		bg, err := opBackground.Apply(src, c)
		if err != nil {
			return err
		}
		_, err = opSave.Apply(bg, c)
		return err
	}

	seq := ops.NewOpSequence(ops.NewOpLoadMany(args), opBackground, opSave)
	_, err := ops.Run(seq, c)
	return err
}

func printSettings(w io.Writer, op ops.Operator) error {
	m, err := json.MarshalIndent(op, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nEstimating background with these settings:\n%s\n", string(m))
	return nil
}
