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

package ppu_test

import (
	"encoding/binary"
	"testing"

	"github.com/carraway/advance/ppu"
	"github.com/carraway/advance/test"
)

// TestMode3RenderMatchesGradient is scenario 9: a VRAM image encoding a
// gradient renders back verbatim on scanline 0.
func TestMode3RenderMatchesGradient(t *testing.T) {
	vram := make([]byte, 96*1024)
	for x := 0; x < ppu.ScreenWidth; x++ {
		binary.LittleEndian.PutUint16(vram[x*2:], uint16(x*137))
	}
	oam := make([]byte, 1024)
	pal := make([]byte, 1024)

	regs := ppu.NewLcdControllerRegs()
	regs.VideoMode = 3
	regs.BGLayerEnabled[2] = true

	rn := ppu.NewRenderer(regs)
	line := rn.RenderLine(0, vram, oam, pal)

	for x := 0; x < ppu.ScreenWidth; x++ {
		want := binary.LittleEndian.Uint16(vram[x*2:])
		test.ExpectEquality(t, line[x], want)
	}
}

// With every BG layer disabled, every pixel falls through to the backdrop:
// palette[0], unconditionally.
func TestAllBackgroundsDisabledFallsThroughToBackdrop(t *testing.T) {
	vram := make([]byte, 96*1024)
	oam := make([]byte, 1024)
	pal := make([]byte, 1024)
	binary.LittleEndian.PutUint16(pal[0:], 0x1234)

	regs := ppu.NewLcdControllerRegs()
	regs.VideoMode = 0 // all BGLayerEnabled left false

	rn := ppu.NewRenderer(regs)
	line := rn.RenderLine(80, vram, oam, pal)

	for x := 0; x < ppu.ScreenWidth; x++ {
		test.ExpectEquality(t, line[x], uint16(0x1234))
	}
}

// Mode 4's bitmap is double-buffered by ActiveDisplayPage: flipping the
// page changes which 0xA000-byte bank is sampled.
func TestMode4HonoursActiveDisplayPage(t *testing.T) {
	vram := make([]byte, 96*1024)
	oam := make([]byte, 1024)
	pal := make([]byte, 1024)
	binary.LittleEndian.PutUint16(pal[2:], 0xAAAA) // palette index 1
	binary.LittleEndian.PutUint16(pal[4:], 0xBBBB) // palette index 2

	vram[0] = 1          // page 0, pixel (0,0)
	vram[0xA000] = 2     // page 1, pixel (0,0)

	regs := ppu.NewLcdControllerRegs()
	regs.VideoMode = 4
	regs.BGLayerEnabled[2] = true
	regs.ActiveDisplayPage = 0

	rn := ppu.NewRenderer(regs)
	line := rn.RenderLine(0, vram, oam, pal)
	test.ExpectEquality(t, line[0], uint16(0xAAAA))

	regs.ActiveDisplayPage = 1
	line = rn.RenderLine(0, vram, oam, pal)
	test.ExpectEquality(t, line[0], uint16(0xBBBB))
}

// A palette index of zero is transparent in mode 4: the backdrop shows
// through instead.
func TestMode4PaletteIndexZeroIsTransparent(t *testing.T) {
	vram := make([]byte, 96*1024)
	oam := make([]byte, 1024)
	pal := make([]byte, 1024)
	binary.LittleEndian.PutUint16(pal[0:], 0x7777) // backdrop color

	regs := ppu.NewLcdControllerRegs()
	regs.VideoMode = 4
	regs.BGLayerEnabled[2] = true

	rn := ppu.NewRenderer(regs)
	line := rn.RenderLine(0, vram, oam, pal)
	test.ExpectEquality(t, line[0], uint16(0x7777))
}
