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

// Package clocks defines the constant values that determine the speed of
// the main system clock and the scanline/frame geometry the rest of the
// core paces itself against.
//
// Values taken from GBATEK's description of the LCD's dot clock: a fixed
// 16.78MHz CPU clock, 1232 cycles per scanline (960 visible + 272
// hblank), and 228 scanlines per frame (160 visible + 68 vblank).
package clocks

const (
	// CPUHz is the fixed system clock rate in Hertz.
	CPUHz = 16777216

	// CyclesPerScanline is the number of clock cycles spent on each of
	// the 228 scanlines that make up a frame, hblank included.
	CyclesPerScanline = 1232

	// ScanlinesPerFrame is the total number of scanlines per frame,
	// vblank included.
	ScanlinesPerFrame = 228

	// VisibleScanlines is the number of scanlines actually drawn to the
	// display; the remainder are vblank.
	VisibleScanlines = 160
)

// CyclesPerFrame is the clock cycle cost of one full frame.
const CyclesPerFrame = CyclesPerScanline * ScanlinesPerFrame

// FrameHz is the refresh rate implied by CPUHz and CyclesPerFrame.
func FrameHz() float64 {
	return float64(CPUHz) / float64(CyclesPerFrame)
}
