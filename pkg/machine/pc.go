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

package machine

import (
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
)

// PC is the program counter, an offset into the story.
type PC address.Offset

func At(at address.Offsetter) PC {
	return PC(at.Offset())
}

func (pc PC) Offset() address.Offset {
	return address.Offset(pc)
}

// Advance moves the counter n bytes forward, or back if n is negative.
func (pc *PC) Advance(n int) {
	*pc += PC(n)
}

func (pc PC) String() string {
	return fmt.Sprintf("PC:%#x", int(pc))
}
