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

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/debugger"
	"github.com/lassandro/gozzy/pkg/encoding"
	"github.com/lassandro/gozzy/pkg/machine"
	"github.com/lassandro/gozzy/pkg/variable"
)

const prompt = "\033[1;30m(dbg)\033[0m "

// lineReader is the part of readline the REPL needs.
type lineReader interface {
	Readline() (string, error)
	SaveHistory(content string) error
	Close() error
}

var _ lineReader = (*readline.Instance)(nil)

// readlineConfig sets up line editing with history saved to historyFile. A
// limit of 0 turns history off.
func readlineConfig(historyFile string, limit int) *readline.Config {
	if limit == 0 {
		limit = -1
		historyFile = ""
	}

	return &readline.Config{
		Prompt:                 prompt,
		HistoryFile:            historyFile,
		HistoryLimit:           limit,
		DisableAutoSaveHistory: true,
	}
}

type repl struct {
	dbg *debugger.Debugger
	mc  *machine.Machine

	lines lineReader
	out   io.Writer

	lastcmd      []string
	historyFile  string
	historyLimit int
	width        int
}

func newREPL(
	mc *machine.Machine,
	lines lineReader,
	out io.Writer,
	historyFile string,
	historyLimit int,
) *repl {
	r := &repl{
		dbg:          debugger.New(mc, out),
		mc:           mc,
		lines:        lines,
		out:          out,
		historyFile:  historyFile,
		historyLimit: historyLimit,
		width:        displayWidth(),
	}

	r.dbg.HandleRead = r.handleAccess("read")
	r.dbg.HandleWrite = r.handleAccess("write")

	return r
}

func (r *repl) handleAccess(kind string) func(address.Offset, *debugger.Debugger) {
	return func(addr address.Offset, dbg *debugger.Debugger) {
		fmt.Fprintf(r.out, "Watchpoint hit (%s)\n", kind)
		dbg.PrintMem(addr, 1)
	}
}

func (r *repl) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *repl) printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// run reads commands until quit or end of input. An empty line repeats the
// previous command; an interrupt on an empty line quits.
func (r *repl) run() {
	for {
		line, err := r.lines.Readline()

		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return
			}
			continue
		} else if err != nil {
			r.println()
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(r.lastcmd) == 0 {
				continue
			}
			args = r.lastcmd
		} else {
			r.lastcmd = make([]string, len(args))
			copy(r.lastcmd, args)

			if r.historyLimit > 0 {
				if err := r.lines.SaveHistory(strings.Join(args, " ")); err != nil {
					r.printf("history: %v\n", err)
				}
			}
		}

		if !r.exec(args[0], args[1:]) {
			return
		}
	}
}

// history prints the newest saved commands, oldest first.
func (r *repl) history() {
	if r.historyFile == "" || r.historyLimit == 0 {
		r.println("history is not saved")
		return
	}

	data, err := os.ReadFile(r.historyFile)

	if errors.Is(err, fs.ErrNotExist) {
		return
	} else if err != nil {
		r.println(err)
		return
	}

	text := strings.TrimRight(string(data), "\n")

	if text == "" {
		return
	}

	lines := strings.Split(text, "\n")

	if len(lines) > r.historyLimit {
		lines = lines[len(lines)-r.historyLimit:]
	}

	for i, line := range lines {
		r.printf("%4d  %s\n", i, line)
	}
}

// exec runs one command and reports whether the REPL should continue.
func (r *repl) exec(cmd string, args []string) bool {
	switch cmd {
	case "w", "wp", "watch", "watchpoint":
		r.watch(args)

	case "m", "mem", "memory":
		r.memory(args)

	case "set":
		r.set(args)

	case "hd", "header":
		r.dbg.PrintHeader()

	case "f", "frame":
		r.dbg.PrintFrame()

	case "bt", "backtrace":
		r.dbg.PrintFrames()

	case "call":
		r.call(args)

	case "ret", "return":
		r.ret(args)

	case "l", "local", "locals":
		r.variable(args, variable.Local, "local [#] [0x####]")

	case "g", "global", "globals":
		r.variable(args, variable.Global, "global [#] [0x####]")

	case "push":
		r.push(args)

	case "pop":
		r.pop(args)

	case "j", "jmp", "jump", "pc":
		r.jump(args)

	case "t", "text":
		r.text(args)

	case "a", "abbrev":
		r.abbrev(args)

	case "history":
		r.history()

	case "clear":
		fmt.Fprint(r.out, "\033[H\033[2J")

	case "q", "quit", "exit":
		return false

	default:
		r.printf("error: '%s' is not a valid command\n", cmd)
	}

	return true
}

func (r *repl) watch(args []string) {
	const usage = "watch [add|list|rm|clear]"

	if len(args) == 0 {
		r.println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x####] [read|write|readwrite]"

		if len(args) != 2 {
			r.println(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			r.println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			r.println(usage)
			return
		}

		if r.dbg.AddWatch(address.Offset(addr), wtype) {
			r.printf("Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(r.dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%s %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range r.dbg.Watchpoints {
			r.printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			r.println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			r.println(err)
			return
		}

		if err := r.dbg.RemoveWatch(i); err != nil {
			r.println(err)
			return
		}

		r.printf("Watchpoint removed [%d]\n", i)

	case "clear":
		r.dbg.ClearWatches()
		r.println("Watchpoints reset")

	default:
		r.printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func (r *repl) memory(args []string) {
	const usage = "memory [0x####|#] [#]"

	if len(args) > 2 {
		r.println(usage)
		return
	}

	size := 8
	addr := r.mc.PC.Offset()

	if len(args) > 0 {
		if value, err := encoding.DecodeHex(args[0]); err == nil {
			addr = address.Offset(value)
		} else if value, err := encoding.DecodeInt(args[0]); err == nil {
			size = value
		} else {
			r.println(err)
			return
		}
	}

	if len(args) > 1 {
		value, err := encoding.DecodeInt(args[1])

		if err != nil {
			r.println(err)
			return
		}

		size = value
	}

	if size < 0 {
		r.println(usage)
		return
	}

	r.dbg.PrintMem(addr, size)
}

// set writes a byte through the checked interface, so static and high
// memory stay read-only.
func (r *repl) set(args []string) {
	const usage = "set [0x####] [0x##]"

	if len(args) != 2 {
		r.println(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		r.println(err)
		return
	}

	value, err := encoding.DecodeWord(args[1])

	if err != nil || value > 0xFF {
		r.println(usage)
		return
	}

	if err := r.mc.Memory.StoreByte(address.Offset(addr), uint8(value)); err != nil {
		r.println(err)
		return
	}

	r.dbg.PrintMem(address.Offset(addr), 1)
}

func (r *repl) words(args []string) ([]uint16, bool) {
	values := make([]uint16, len(args))

	for i, arg := range args {
		value, err := encoding.DecodeWord(arg)

		if err != nil {
			r.println(err)
			return nil, false
		}

		values[i] = value
	}

	return values, true
}

// call enters a routine by packed address. The result goes to the stack.
func (r *repl) call(args []string) {
	const usage = "call [0x####] [args...]"

	if len(args) == 0 {
		r.println(usage)
		return
	}

	routine, err := encoding.DecodeHex(args[0])

	if err != nil {
		r.println(err)
		return
	}

	operands, ok := r.words(args[1:])

	if !ok {
		return
	}

	at := address.PackedAddress(routine).RoutineOffset(r.mc.Header.Version)

	if err := r.mc.Call(at, variable.Stack(), operands); err != nil {
		r.println(err)
		return
	}

	r.dbg.PrintFrame()
}

func (r *repl) ret(args []string) {
	const usage = "return [value]"

	if len(args) > 1 {
		r.println(usage)
		return
	}

	values, ok := r.words(args)

	if !ok {
		return
	}

	value := uint16(0)
	if len(values) == 1 {
		value = values[0]
	}

	if err := r.mc.Return(value); err != nil {
		r.println(err)
		return
	}

	r.dbg.PrintFrame()
}

func (r *repl) variable(
	args []string,
	ctor func(uint8) (variable.Variable, error),
	usage string,
) {
	if len(args) == 0 || len(args) > 2 {
		r.println(usage)
		return
	}

	index, err := encoding.DecodeInt(args[0])

	if err != nil || index < 0 || index > math.MaxUint8 {
		r.println(usage)
		return
	}

	v, err := ctor(uint8(index))

	if err != nil {
		r.println(err)
		return
	}

	if len(args) == 2 {
		value, err := encoding.DecodeWord(args[1])

		if err != nil {
			r.println(err)
			return
		}

		if err := r.mc.WriteVariable(v, value); err != nil {
			r.println(err)
			return
		}
	}

	value, err := r.mc.ReadVariable(v)

	if err != nil {
		r.println(err)
		return
	}

	r.printf("\033[1m%s:\033[0m %#04x (%d)\n", v, value, encoding.Signed(value))
}

func (r *repl) push(args []string) {
	const usage = "push [value...]"

	values, ok := r.words(args)

	if !ok || len(values) == 0 {
		r.println(usage)
		return
	}

	for _, value := range values {
		if err := r.mc.WriteVariable(variable.Stack(), value); err != nil {
			r.println(err)
			return
		}
	}

	r.dbg.PrintFrame()
}

func (r *repl) pop(args []string) {
	const usage = "pop [#]"

	count := 1

	if len(args) > 1 {
		r.println(usage)
		return
	} else if len(args) == 1 {
		value, err := encoding.DecodeInt(args[0])

		if err != nil {
			r.println(err)
			return
		}

		count = value
	}

	for i := 0; i < count; i++ {
		value, err := r.mc.ReadVariable(variable.Stack())

		if err != nil {
			r.println(err)
			return
		}

		r.printf("%#04x\n", value)
	}
}

func (r *repl) jump(args []string) {
	const usage = "jump [0x####]"

	if len(args) > 1 {
		r.println(usage)
		return
	}

	if len(args) == 1 {
		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			r.println(err)
			return
		}

		r.mc.PC = machine.At(address.ByteAddress(addr))
	}

	r.printf("\033[1m%s\033[0m\n", r.mc.PC)
}

func (r *repl) text(args []string) {
	const usage = "text [0x####] [-p]"

	if len(args) == 0 || len(args) > 2 {
		r.println(usage)
		return
	}

	raw, err := encoding.DecodeHex(args[0])

	if err != nil {
		r.println(err)
		return
	}

	var at address.Offsetter = address.ByteAddress(raw)

	if len(args) == 2 {
		if args[1] != "-p" {
			r.println(usage)
			return
		}

		at = address.PackedAddress(raw).StringOffset(r.mc.Header.Version)
	}

	s, err := r.mc.Text(at)

	if err != nil {
		r.println(err)
		return
	}

	r.println(wrap(s, r.width, 0))
}

func (r *repl) abbrev(args []string) {
	const usage = "abbrev [1-3] [0-31]"

	if len(args) != 2 {
		r.println(usage)
		return
	}

	table, err := encoding.DecodeInt(args[0])

	if err != nil || table < 0 || table > math.MaxUint8 {
		r.println(usage)
		return
	}

	index, err := encoding.DecodeInt(args[1])

	if err != nil || index < 0 || index > math.MaxUint8 {
		r.println(usage)
		return
	}

	s, err := r.mc.Abbreviation(uint8(table), uint8(index))

	if err != nil {
		r.println(err)
		return
	}

	r.printf("%q\n", s)
}
