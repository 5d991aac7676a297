/*
 * miniker - Main process.
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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/miniker/command/reader"
	"github.com/rcornwell/miniker/config/configparser"
	"github.com/rcornwell/miniker/kernel"
	"github.com/rcornwell/miniker/kernel/event"
	"github.com/rcornwell/miniker/util/logger"
)

var log *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "miniker.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optSwap := getopt.StringLong("swap", 's', "", "Swap file (overrides configuration file)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			os.Stderr.WriteString("cannot create log file: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	log = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(log)

	log.Info("miniker started")

	settings := configparser.Default()
	if _, err := os.Stat(*optConfig); err == nil {
		loaded, err := configparser.LoadFile(*optConfig)
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		settings = loaded
	}
	if *optSwap != "" {
		settings.Kernel.SwapPath = *optSwap
	}

	k, err := kernel.New(settings.Kernel)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	go logEvents(k.Events)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		reader.ConsoleReader(k)
		close(done)
	}()

	ticker := time.NewTicker(settings.Tick)
	defer ticker.Stop()

run:
	for {
		select {
		case <-sigChan:
			log.Info("interrupted")
			break run

		case <-done:
			break run

		case <-ticker.C:
			k.Tick()
		}
	}

	log.Info("shutting down")
	if err := k.Shutdown(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// logEvents mirrors kernel lifecycle events to the structured logger at
// Info level. Malformed user commands never flow through here: they are
// surfaced only by the command parser's returned error, printed directly
// by the console reader, never logged.
func logEvents(events *event.Stream) {
	for ev := range events.C() {
		log.Info("kernel event",
			"kind", eventKindName(ev.Kind),
			"pid", ev.PID,
			"uid", ev.UID,
			"path", ev.Path,
			"reason", ev.Reason,
		)
	}
}

func eventKindName(k event.Kind) string {
	switch k {
	case event.Admitted:
		return "admitted"
	case event.Queued:
		return "queued"
	case event.Dispatched:
		return "dispatched"
	case event.Preempted:
		return "preempted"
	case event.Terminated:
		return "terminated"
	case event.Killed:
		return "killed"
	case event.CommandError:
		return "command_error"
	case event.ShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}
