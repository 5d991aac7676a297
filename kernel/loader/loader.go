/*
 * miniker - Page loader
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package loader translates a program file into a sequence of swap frames,
// writing instruction records into the swap store and updating the frame
// table and the caller's page map.
package loader

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/rcornwell/miniker/kernel/pcb"
	"github.com/rcornwell/miniker/kernel/swap"
	"github.com/rcornwell/miniker/kernel/tms"
)

// Admission-level errors. NotEnoughFrames is retryable (the caller queues
// the process to New); the others are terminal for the process.
var (
	ErrNotEnoughFrames = errors.New("not enough frames")
	ErrProgramTooLarge = errors.New("program too large for swap")
	ErrEmptyProgram    = errors.New("empty or missing program")
)

// Loader reads program files into a shared swap store and frame table.
type Loader struct {
	Swap *swap.Store
	TMS  *tms.Table
}

// New builds a Loader over the given swap store and frame table.
func New(s *swap.Store, t *tms.Table) *Loader {
	return &Loader{Swap: s, TMS: t}
}

// Load reads path, computes how many frames it needs, and if the frame
// table can satisfy that demand, allocates frames first-fit, writes every
// instruction record (uppercased, space-padded, truncated to the record
// width; missing trailing lines become the all-zero end-of-program
// sentinel), and returns the resulting page map.
//
// Any failure after allocation has begun is rolled back: every frame
// allocated during this call is freed before the error is returned.
func (l *Loader) Load(path string, pid int) (*pcb.PageMap, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyProgram
	}

	slots := l.Swap.SlotsPerFrame()
	need := (len(lines) + slots - 1) / slots
	if need > l.TMS.Len() {
		return nil, ErrProgramTooLarge
	}
	if l.TMS.CountFree() < need {
		return nil, ErrNotEnoughFrames
	}

	frames := make([]int, 0, need)
	rollback := func() {
		for _, f := range frames {
			l.TMS.Free(f)
		}
	}

	for i := 0; i < need; i++ {
		frame, ok := l.TMS.Allocate(pid)
		if !ok {
			rollback()
			return nil, ErrNotEnoughFrames
		}
		frames = append(frames, frame)

		for slot := 0; slot < slots; slot++ {
			idx := i*slots + slot
			var record []byte
			if idx < len(lines) {
				record = []byte(lines[idx])
			} else {
				record = make([]byte, l.Swap.RecordSize())
			}
			if err := l.Swap.WriteInstruction(frame, slot, record); err != nil {
				rollback()
				return nil, err
			}
		}
	}

	return pcb.NewPageMap(pid, frames), nil
}

// readLines reads path line by line, uppercasing each line and stripping a
// trailing CR; truncation to the record width is left to the swap store's
// WriteInstruction (the program-file contract: truncation is silent). It
// returns a nil slice, nil error for a missing file so Load
// can report ErrEmptyProgram rather than an I/O error, matching the
// original behavior of routing a missing program straight to Terminated.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToUpper(scanner.Text())
		line = strings.TrimRight(line, "\r")
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
