// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command qconv converts q parse trees,
// as printed by var2string, into nested
// calls and flattened statements.
//
// Usage:
//
//	qconv [flags] [text ...]
//	qconv -f [flags] file ...
//
// With no arguments, qconv reads one
// tree from stdin (or the -i file).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/SnellerInc/qconv"
	"github.com/SnellerInc/qconv/compr"
	"github.com/SnellerInc/qconv/expr"
	"github.com/SnellerInc/qconv/flatten"
)

// decompressed inputs are capped at this size
const maxInput = 256 << 20

var (
	dashf       bool
	dashr       bool
	dashm       string
	dasho       string
	dashi       string
	printTime   bool
	printAllocs bool

	dst *bufio.Writer
)

func init() {
	flag.BoolVar(&dashf, "f", false, "read arguments as files containing parse trees")
	flag.BoolVar(&dashr, "r", false, "print redacted calls instead of the -m output")
	flag.StringVar(&dashm, "m", "both", "output mode: calls, statements, both, ion, iontext, or json")
	flag.StringVar(&dasho, "o", "", "file for output (default is stdout)")
	flag.StringVar(&dashi, "i", "-", "file named stdin (default is stdin)")
	flag.BoolVar(&printTime, "t", false, "print conversion time on stderr")
	flag.BoolVar(&printAllocs, "A", false, "print allocations stats on stderr")
}

type memStats struct {
	mallocs uint64 // runtime.MemStats.Mallocs
	bytes   uint64 // runtime.MemStats.TotalAlloc
}

func (m *memStats) Start() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.mallocs = stats.Mallocs
	m.bytes = stats.TotalAlloc
}

func (m *memStats) Stop() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.mallocs = stats.Mallocs - m.mallocs
	m.bytes = stats.TotalAlloc - m.bytes
}

func formatSize(size uint64) string {
	res := fmt.Sprintf("%d B", size)
	if size > 1024*1024*1024 {
		res += fmt.Sprintf(" (%.2f GB)", float64(size)/(1024*1024*1024))
	} else if size > 1024*1024 {
		res += fmt.Sprintf(" (%.2f MB)", float64(size)/(1024*1024))
	} else if size > 1024 {
		res += fmt.Sprintf(" (%.2f kB)", float64(size)/1024)
	}

	return res
}

func exitf(f string, args ...interface{}) {
	if dst != nil {
		dst.Flush()
	}
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

// read reads all of r, decompressing it
// if name or the data itself indicate
// zstd or s2 compression
func read(name string, r io.Reader) []byte {
	buf, err := io.ReadAll(r)
	if err != nil {
		exitf("reading %s: %s\n", name, err)
	}
	d := compr.ForFile(name)
	if d == nil {
		d = compr.Detect(buf)
	}
	if d == nil {
		return buf
	}
	buf, err = d.Decompress(buf, nil, maxInput)
	if err != nil {
		exitf("%s: %s decompression: %s\n", name, d.Name(), err)
	}
	return buf
}

func input(arg string) (string, []byte) {
	if !dashf {
		return "argument", []byte(arg)
	}
	f, err := os.Open(arg)
	if err != nil {
		exitf("%s\n", err)
	}
	defer f.Close()
	return arg, read(arg, f)
}

func do(name string, src []byte) {
	n, err := qconv.Parse(src)
	if err != nil {
		exitf("%s: %s\n", name, err)
	}
	if dashr {
		fmt.Fprintln(dst, expr.ToRedacted(n))
		return
	}
	if dashm == "both" {
		fmt.Fprintln(dst, expr.ToString(n))
		fmt.Fprintln(dst, flatten.Flatten(n).Text())
		return
	}
	format, err := qconv.ParseFormat(dashm)
	if err != nil {
		exitf("%s\n", err)
	}
	out, err := qconv.Render(n, format)
	if err != nil {
		exitf("%s: %s\n", name, err)
	}
	dst.Write(out)
	if format != qconv.FormatIon {
		dst.WriteByte('\n')
	}
}

func main() {
	flag.Parse()
	if dashm != "both" {
		if _, err := qconv.ParseFormat(dashm); err != nil {
			exitf("-m: %s\n", err)
		}
	}

	out := os.Stdout
	if dasho != "" {
		f, err := os.Create(dasho)
		if err != nil {
			exitf("%s\n", err)
		}
		out = f
		defer f.Close()
	}
	dst = bufio.NewWriter(out)

	type job struct {
		name string
		src  []byte
	}
	var jobs []job
	args := flag.Args()
	if len(args) == 0 {
		in, name := io.Reader(os.Stdin), "stdin"
		if dashi != "-" {
			f, err := os.Open(dashi)
			if err != nil {
				exitf("%s\n", err)
			}
			defer f.Close()
			in, name = f, dashi
		}
		jobs = append(jobs, job{name, read(name, in)})
	}
	for i := range args {
		name, src := input(args[i])
		jobs = append(jobs, job{name, src})
	}

	startTime := time.Now()
	var stats memStats
	stats.Start()

	for i := range jobs {
		do(jobs[i].name, jobs[i].src)
	}
	if err := dst.Flush(); err != nil {
		exitf("writing output: %s\n", err)
	}

	stats.Stop()
	elapsed := time.Since(startTime)
	if printTime {
		logf("conversion time: %v", elapsed)
	}
	if printAllocs {
		logf("allocated memory: %s, allocations: %d",
			formatSize(stats.bytes), stats.mallocs)
	}
}
