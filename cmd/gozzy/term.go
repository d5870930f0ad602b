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
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const defaultWidth = 80

// terminalWidth asks the terminal on stdout for its width, falling back to
// 80 columns when stdout is not a terminal.
func terminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)

	if err != nil || ws.Col == 0 {
		return defaultWidth
	}

	return int(ws.Col)
}

// wrap breaks s into lines of at most width columns at spaces. Lines after
// the first are indented by indent. Existing newlines are kept, and words
// longer than a line are left whole.
func wrap(s string, width, indent int) string {
	if width <= indent {
		return s
	}

	var sb strings.Builder
	pad := strings.Repeat(" ", indent)

	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}

		col := 0

		for j, word := range strings.Split(line, " ") {
			n := len([]rune(word))

			if j > 0 {
				if col+1+n > width {
					sb.WriteByte('\n')
					sb.WriteString(pad)
					col = indent
				} else {
					sb.WriteByte(' ')
					col++
				}
			}

			sb.WriteString(word)
			col += n
		}
	}

	return sb.String()
}
