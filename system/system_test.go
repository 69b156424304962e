// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package system_test

import (
	"encoding/binary"
	"testing"

	"github.com/carraway/advance/memory"
	"github.com/carraway/advance/ppu"
	"github.com/carraway/advance/system"
	"github.com/carraway/advance/test"
)

type stubDisplay struct {
	frames int
	last   [ppu.ScreenHeight][ppu.ScreenWidth]uint16
}

func (s *stubDisplay) UpdateFrame(rows [ppu.ScreenHeight][ppu.ScreenWidth]uint16) error {
	s.frames++
	s.last = rows
	return nil
}

// RunFrame drives the scheduler through a whole frame and hands the
// result to the display sink exactly once. With every BG layer left
// disabled (the LCD register file's reset state), every pixel of the
// delivered frame falls through to the palette-zero backdrop colour.
func TestRunFrameRendersBackdropThroughToDisplay(t *testing.T) {
	sys := system.New(nil, nil, 0, memory.DefaultCartTiming(), 0x08000000)

	pal := make([]byte, 1024)
	binary.LittleEndian.PutUint16(pal[0:], 0x2222)
	sys.LoadPalette(pal)

	disp := &stubDisplay{}
	err := sys.RunFrame(disp)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, disp.frames, 1)

	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			test.ExpectEquality(t, disp.last[y][x], uint16(0x2222))
		}
	}
}
