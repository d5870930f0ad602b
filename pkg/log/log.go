// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package log is a small module-aware layer over log/slog.
//
// Trace and Debug records are only emitted for modules that have been
// enabled; Info and above are always emitted. Until InitLogger is called
// every record is discarded.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

const (
	MemoryModule  = "memory"
	StackModule   = "stack"
	TextModule    = "text"
	MachineModule = "machine"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
)

var KnownModules = []string{MemoryModule, StackModule, TextModule, MachineModule}

var root atomic.Pointer[slog.Logger]

var modules atomic.Pointer[map[string]bool]

func init() {
	root.Store(slog.New(discardHandler{}))
	modules.Store(&map[string]bool{})
}

func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// InitLogger directs records at or above level to w.
func InitLogger(level slog.Level, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}
			return a
		},
	}

	root.Store(slog.New(slog.NewTextHandler(w, opts)))
}

// Discard drops every record until the next InitLogger.
func Discard() {
	root.Store(slog.New(discardHandler{}))
}

// EnableModules enables a comma separated list of modules. "all" enables
// every known module.
func EnableModules(list string) {
	enabled := map[string]bool{}

	for k, v := range *modules.Load() {
		enabled[k] = v
	}

	for _, module := range strings.Split(list, ",") {
		module = strings.TrimSpace(module)

		switch module {
		case "":
		case "all":
			for _, known := range KnownModules {
				enabled[known] = true
			}
		default:
			enabled[module] = true
		}
	}

	modules.Store(&enabled)
}

func DisableModule(module string) {
	enabled := map[string]bool{}

	for k, v := range *modules.Load() {
		enabled[k] = v && k != module
	}

	modules.Store(&enabled)
}

func IsModuleEnabled(module string) bool {
	return (*modules.Load())[module]
}

func Trace(module string, msg string, ctx ...any) {
	if !IsModuleEnabled(module) {
		return
	}
	write(LevelTrace, module, msg, ctx...)
}

func Debug(module string, msg string, ctx ...any) {
	if !IsModuleEnabled(module) {
		return
	}
	write(LevelDebug, module, msg, ctx...)
}

func Info(module string, msg string, ctx ...any) {
	write(LevelInfo, module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...any) {
	write(LevelWarn, module, msg, ctx...)
}

func Error(module string, msg string, ctx ...any) {
	write(LevelError, module, msg, ctx...)
}

func write(level slog.Level, module string, msg string, ctx ...any) {
	logger := root.Load()

	if !logger.Enabled(context.Background(), level) {
		return
	}

	logger.Log(context.Background(), level, msg, append([]any{"module", module}, ctx...)...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
