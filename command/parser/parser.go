/*
 * miniker - Command parser
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

// Package parser turns one line of operator input into a Kernel operation:
// LOAD/CARGAR, KILL/MATAR, EXIT/SALIR. Malformed commands return an error
// and never touch the Kernel.
package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/rcornwell/miniker/kernel"
)

type cmdLine struct {
	line string
	pos  int
}

// skipSpace advances past leading whitespace.
func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

// isEOL reports whether the line is exhausted.
func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

// getWord returns the next whitespace-delimited token, advancing past it.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

var verbs = map[string]func(*cmdLine, *kernel.Kernel) (bool, error){
	"LOAD":   doLoad,
	"CARGAR": doLoad,
	"KILL":   doKill,
	"MATAR":  doKill,
	"EXIT":   doExit,
	"SALIR":  doExit,
}

// ProcessCommand parses and applies one command line against k. It reports
// whether the simulator should exit, and any error (which leaves k
// unchanged).
func ProcessCommand(commandLine string, k *kernel.Kernel) (bool, error) {
	line := cmdLine{line: commandLine}
	verb := strings.ToUpper(line.getWord())
	if verb == "" {
		return false, nil
	}

	handler, ok := verbs[verb]
	if !ok {
		return false, errors.New("unknown command: " + verb)
	}
	return handler(&line, k)
}

// doLoad handles: LOAD <path> <uid>.
func doLoad(line *cmdLine, k *kernel.Kernel) (bool, error) {
	path := line.getWord()
	if path == "" {
		return false, errors.New("LOAD requires a program path")
	}

	uidWord := line.getWord()
	if uidWord == "" {
		return false, errors.New("LOAD requires a uid")
	}
	uid, err := strconv.Atoi(uidWord)
	if err != nil || uid < 0 {
		return false, errors.New("LOAD uid must be a non-negative integer")
	}

	line.skipSpace()
	if !line.isEOL() {
		return false, errors.New("LOAD takes exactly two arguments: path and uid")
	}

	k.Load(path, uid)
	return false, nil
}

// doKill handles: KILL <pid>.
func doKill(line *cmdLine, k *kernel.Kernel) (bool, error) {
	pidWord := line.getWord()
	if pidWord == "" {
		return false, errors.New("KILL requires a pid")
	}
	pid, err := strconv.Atoi(pidWord)
	if err != nil {
		return false, errors.New("KILL pid must be an integer")
	}

	line.skipSpace()
	if !line.isEOL() {
		return false, errors.New("KILL takes exactly one argument: pid")
	}

	return false, k.Kill(pid)
}

// doExit handles: EXIT (no arguments).
func doExit(line *cmdLine, _ *kernel.Kernel) (bool, error) {
	line.skipSpace()
	if !line.isEOL() {
		return false, errors.New("EXIT takes no arguments")
	}
	return true, nil
}
