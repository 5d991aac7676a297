/*
 * miniker - Configuration file parser
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

// Package configparser reads the simulator's configuration file: one
// KEY = VALUE pair per line, '#' starts a comment, blank lines are
// ignored.
package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rcornwell/miniker/kernel"
)

/*
 * Configuration file format:
 *
 * <line> := <blank> | '#' <comment> | <key> '=' <value>
 * <key>  := QUANTUM | PBASE | TICK | SWAPFILE | FRAMES | SLOTS | RECORDSIZE
 */

var recognized = map[string]bool{
	"QUANTUM":    true,
	"PBASE":      true,
	"TICK":       true,
	"SWAPFILE":   true,
	"FRAMES":     true,
	"SLOTS":      true,
	"RECORDSIZE": true,
}

// Settings is the parsed form of a configuration file. Tick is the wall
// clock period between instruction-cycle ticks; it has no correctness
// bearing on the simulation, only on how fast it appears to run.
type Settings struct {
	Kernel kernel.Config
	Tick   time.Duration
}

// Default returns Settings built from kernel.DefaultConfig with a 50ms
// tick period.
func Default() Settings {
	return Settings{Kernel: kernel.DefaultConfig(), Tick: 50 * time.Millisecond}
}

// LoadFile parses path into Settings seeded from Default(). A reference to
// an unrecognized key, or a value that fails to parse, is a fatal error:
// configuration failures never leave the simulator running on a partial
// configuration.
func LoadFile(path string) (Settings, error) {
	settings := Default()

	file, err := os.Open(path)
	if err != nil {
		return Settings{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Settings{}, fmt.Errorf("line %d: expected KEY = VALUE, got %q", lineNumber, line)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if !recognized[key] {
			return Settings{}, fmt.Errorf("line %d: unknown configuration key %q", lineNumber, key)
		}

		if err := settings.apply(key, value); err != nil {
			return Settings{}, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s *Settings) apply(key, value string) error {
	switch key {
	case "QUANTUM":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("QUANTUM must be an integer: %w", err)
		}
		s.Kernel.Quantum = n

	case "PBASE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("PBASE must be an integer: %w", err)
		}
		s.Kernel.PBase = n

	case "TICK":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("TICK must be a duration such as 50ms: %w", err)
		}
		s.Tick = d

	case "SWAPFILE":
		if value == "" {
			return fmt.Errorf("SWAPFILE requires a path")
		}
		s.Kernel.SwapPath = value

	case "FRAMES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("FRAMES must be an integer: %w", err)
		}
		s.Kernel.Frames = n

	case "SLOTS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("SLOTS must be an integer: %w", err)
		}
		s.Kernel.SlotsPerFrame = n

	case "RECORDSIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("RECORDSIZE must be an integer: %w", err)
		}
		s.Kernel.RecordSize = n
	}
	return nil
}
