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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/mlnoga/labgenp/internal/labgen"
	"github.com/mlnoga/labgenp/internal/render"
	"github.com/mlnoga/labgenp/internal/stats"
	"github.com/pkg/errors"
)

// Bytes per history entry and color channel, plus the score
const bytesPerEntryAndPixel = 3 + 4

// Estimates the background of a frame sequence. Takes n inputs in temporal
// order, produces one output
type OpBackground struct {
	OpBase
	S         int     `json:"s"`         // history capacity per region
	N         int     `json:"n"`         // aggregation parameter
	Segments  int     `json:"segments"`  // patches per axis, 0 for pixels
	Motion    string  `json:"motion"`    // save motion maps with given filename pattern
	QoM       string  `json:"qom"`       // save quantities of motion with given filename pattern
	StatsCSV  string  `json:"statsCSV"`  // write per-frame map statistics to given CSV file
	StatsPlot string  `json:"statsPlot"` // plot per-frame motion statistics to given image file
	Record    string  `json:"record"`    // record visualization to video file or image pattern
	FPS       float64 `json:"fps"`       // frame rate of the recorded video
	VWidth    int     `json:"vwidth"`    // width of each visualization tile, 0 for auto
	VHeight   int     `json:"vheight"`   // height of each visualization tile, 0 for auto
	KeepRatio bool    `json:"keepRatio"` // keep aspect ratio of visualization tiles
}

func init() { SetOperatorFactory(func() Operator { return NewOpBackgroundDefault() }) } // register the operator for JSON decoding

func NewOpBackgroundDefault() *OpBackground {
	return NewOpBackground(labgen.DefaultS, labgen.DefaultN, 0)
}

func NewOpBackground(s, n, segments int) *OpBackground {
	return &OpBackground{
		OpBase:    OpBase{Type: "background", Active: true},
		S:         s,
		N:         n,
		Segments:  segments,
		FPS:       25,
		KeepRatio: true,
	}
}

// Unmarshal from JSON, using default values for missing fields
func (op *OpBackground) UnmarshalJSON(data []byte) error {
	type defaults OpBackground
	def := defaults(*NewOpBackgroundDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpBackground(def)
	return nil
}

// Returns the estimated history memory in MiB for frames of the given size
func (op *OpBackground) MemoryMB(width, height int) int {
	return int(int64(width) * int64(height) * int64(op.S) * bytesPerEntryAndPixel / 1024 / 1024)
}

func (op *OpBackground) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 {
		return nil, errors.Errorf("%s operator needs inputs", op.Type)
	}
	for _, p := range []string{op.Motion, op.QoM, op.StatsCSV, op.StatsPlot, op.Record} {
		if p == "" {
			continue
		}
		if err := c.checkPath(p); err != nil {
			return nil, err
		}
	}

	out := func() (f *frame.Frame, err error) {
		src := NewPromiseSource(ins, c.MaxThreads)
		defer src.Close()
		return op.Apply(src, c)
	}
	return []Promise{out}, nil
}

// Runs the estimator over all frames of the source and returns the
// background. The first frame determines the expected frame size.
func (op *OpBackground) Apply(src FrameSource, c *Context) (result *frame.Frame, err error) {
	start := time.Now()
	first, err := src.Next()
	if err == io.EOF {
		return nil, errors.Wrap(labgen.ErrNotReady, "no frames")
	}
	if err != nil {
		return nil, err
	}

	cfg := labgen.Config{
		Height:     first.Height,
		Width:      first.Width,
		S:          op.S,
		N:          op.N,
		Segments:   op.Segments,
		MaxThreads: c.MaxThreads,
	}
	est, err := labgen.New(cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "Estimating background of %dx%d frames with S=%d N=%d kernel %d segments %d threads %d\n",
		cfg.Width, cfg.Height, cfg.S, cfg.N, est.KernelSize(), cfg.Segments, cfg.MaxThreads)
	if mb := op.MemoryMB(cfg.Width, cfg.Height); c.HistoryMemoryMB > 0 && mb > c.HistoryMemoryMB {
		fmt.Fprintf(c.Log, "Warning: histories need about %d MiB, more than the %d MiB budget\n", mb, c.HistoryMemoryMB)
	}

	d, err := op.newDiagnostics(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := d.close(); cerr != nil && err == nil {
			result, err = nil, cerr
		}
	}()

	for f := first; ; {
		inserted := est.Frames()
		if err := est.Insert(f); err != nil {
			return nil, errors.Wrapf(err, "%d", f.ID)
		}
		if est.Frames() > inserted {
			if err := d.frame(f, est, c); err != nil {
				return nil, err
			}
		}

		f, err = src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	result, err = est.GenerateBackground()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "Estimated background from %d frames after %v\n", est.Frames()+1, time.Since(start))
	return result, nil
}

// Per-frame diagnostic outputs of the background operator
type diagnostics struct {
	op       *OpBackground
	tile     *frame.Frame // map rendering scratch
	csvFile  *os.File
	csv      *bufio.Writer
	trace    *stats.Trace
	recorder Recorder
	tileW    int
	tileH    int
}

func (op *OpBackground) newDiagnostics(width, height int) (d *diagnostics, err error) {
	d = &diagnostics{op: op, tile: frame.New(width, height, 3)}
	if op.StatsCSV != "" {
		if d.csvFile, err = os.Create(op.StatsCSV); err != nil {
			return nil, err
		}
		d.csv = bufio.NewWriter(d.csvFile)
		s := stats.BasicStats{}
		fmt.Fprintf(d.csv, "ID,%s,%s\n", prefixColumns(s.ToCSVHeader(), "Motion"), prefixColumns(s.ToCSVHeader(), "QoM"))
	}
	if op.StatsPlot != "" {
		d.trace = &stats.Trace{}
	}
	if op.Record != "" {
		d.tileW, d.tileH = render.FitSize(width, height, op.VWidth, op.VHeight, op.KeepRatio)
		if op.VWidth > 0 && op.VHeight > 0 {
			d.tileW, d.tileH = op.VWidth, op.VHeight
		}
		if d.recorder, err = NewRecorder(op.Record, op.FPS, 3*d.tileW, d.tileH); err != nil {
			d.close()
			return nil, err
		}
	}
	return d, nil
}

// Writes the diagnostics for a frame that was just inserted
func (d *diagnostics) frame(f *frame.Frame, est *labgen.Estimator, c *Context) error {
	op := d.op
	if op.Motion != "" {
		if err := render.Gray(est.MotionMap(), d.tile); err != nil {
			return err
		}
		if err := SaveFrame(d.tile, expandPattern(op.Motion, f.ID)); err != nil {
			return errors.Wrapf(err, "%d: saving motion map", f.ID)
		}
	}
	if op.QoM != "" {
		if err := render.Heatmap(est.QuantitiesOfMotion(), d.tile); err != nil {
			return err
		}
		if err := SaveFrame(d.tile, expandPattern(op.QoM, f.ID)); err != nil {
			return errors.Wrapf(err, "%d: saving quantities of motion", f.ID)
		}
	}
	if d.csv != nil || d.trace != nil {
		ms := stats.CalcExtendedStats(est.MotionMap().Data)
		qs := stats.CalcBasicStats(est.QuantitiesOfMotion().Data)
		fmt.Fprintf(c.Log, "%d: Motion %v\n", f.ID, ms)
		if d.csv != nil {
			fmt.Fprintf(d.csv, "%d,%s,%s\n", f.ID, ms.ToCSVLine(), qs.ToCSVLine())
		}
		if d.trace != nil {
			d.trace.Add(f.ID, ms, qs)
		}
	}
	if d.recorder != nil {
		if err := d.record(f, est); err != nil {
			return err
		}
	}
	return nil
}

// Records the composite of input, quantities of motion and current background
func (d *diagnostics) record(f *frame.Frame, est *labgen.Estimator) error {
	bg, err := est.GenerateBackground()
	if err != nil {
		return err
	}
	qom := frame.New(f.Width, f.Height, 3)
	if err := render.Heatmap(est.QuantitiesOfMotion(), qom); err != nil {
		return err
	}

	tiles := []*frame.Frame{f, qom, bg}
	for i, t := range tiles {
		if tiles[i], err = render.Fit(t, d.tileW, d.tileH, d.op.KeepRatio); err != nil {
			return err
		}
	}
	composite, err := render.Composite(tiles...)
	if err != nil {
		return err
	}
	composite.ID = f.ID
	return d.recorder.Write(composite)
}

func (d *diagnostics) close() error {
	var err error
	if d.recorder != nil {
		err = d.recorder.Close()
	}
	if d.trace != nil && d.trace.Len() > 0 {
		if perr := d.trace.Plot(d.op.StatsPlot); perr != nil && err == nil {
			err = perr
		}
	}
	if d.csv != nil {
		if ferr := d.csv.Flush(); ferr != nil && err == nil {
			err = ferr
		}
		if cerr := d.csvFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Prefixes every column of a CSV header with the given name
func prefixColumns(header, name string) string {
	cols := strings.Split(header, ",")
	for i := range cols {
		cols[i] = name + cols[i]
	}
	return strings.Join(cols, ",")
}
