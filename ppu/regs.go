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

// Package ppu decodes the LCD controller's register file and renders
// scanlines from VRAM and palette memory on demand.
package ppu

import "github.com/carraway/advance/util"

// NumBGLayers is the number of background layers the LCD controller
// exposes (BG0-BG3).
const NumBGLayers = 4

// BgPaletteMode selects a background's tile pixel format.
type BgPaletteMode uint8

const (
	Pal16 BgPaletteMode = iota
	Pal256
)

// BgAttributes holds one background layer's BGxCNT/BGxHOFS/BGxVOFS state.
type BgAttributes struct {
	Priority    uint8 // 0-3
	CharBase    uint8 // 0-3, units of 16 KiB
	PaletteMode BgPaletteMode
	MapBase     uint8 // 0-31, units of 2 KiB
	SizeMode    uint8 // 0-3
	XScroll     uint16
	YScroll     uint16
}

// LcdControllerRegs is the decoded DISPCNT/BGxCNT/BGxHOFS/BGxVOFS register
// file. It implements memory.MMIOHandler, so a *LcdControllerRegs can be
// passed straight to Memory.SetMMIOHandler.
type LcdControllerRegs struct {
	VideoMode          uint8 // 0-5
	ActiveDisplayPage  uint8 // 0-1
	ForcedBlankEnabled bool
	BGLayerEnabled     [NumBGLayers]bool
	BG                 [NumBGLayers]BgAttributes
}

// NewLcdControllerRegs returns a register file with every field at its
// power-on default (all zero).
func NewLcdControllerRegs() *LcdControllerRegs {
	return &LcdControllerRegs{}
}

// WriteRegister implements memory.MMIOHandler. offset is relative to
// 0x04000000; unrecognised offsets (including every OBJ/window/sound/timer
// register outside this core's scope) report false so the memory unit can
// log them.
func (r *LcdControllerRegs) WriteRegister(offset uint32, value uint16) bool {
	switch offset {
	case 0x000:
		r.writeDispcnt(value)
	case 0x008:
		r.writeBgcnt(0, value)
	case 0x00A:
		r.writeBgcnt(1, value)
	case 0x00C:
		r.writeBgcnt(2, value)
	case 0x00E:
		r.writeBgcnt(3, value)
	case 0x010:
		r.writeBgHofs(0, value)
	case 0x012:
		r.writeBgVofs(0, value)
	case 0x014:
		r.writeBgHofs(1, value)
	case 0x016:
		r.writeBgVofs(1, value)
	case 0x018:
		r.writeBgHofs(2, value)
	case 0x01A:
		r.writeBgVofs(2, value)
	case 0x01C:
		r.writeBgHofs(3, value)
	case 0x01E:
		r.writeBgVofs(3, value)
	default:
		return false
	}
	return true
}

// ReadRegister implements memory.MMIOHandler. Only the registers this core
// models (DISPCNT, BGxCNT) read back; the scroll registers are write-only
// on real hardware, so reading them reports false (open bus).
func (r *LcdControllerRegs) ReadRegister(offset uint32) (uint16, bool) {
	switch offset {
	case 0x000:
		return r.dispcntValue(), true
	case 0x008:
		return r.bgcntValue(0), true
	case 0x00A:
		return r.bgcntValue(1), true
	case 0x00C:
		return r.bgcntValue(2), true
	case 0x00E:
		return r.bgcntValue(3), true
	default:
		return 0, false
	}
}

// CurrentMode implements memory.MMIOHandler.
func (r *LcdControllerRegs) CurrentMode() int {
	return int(r.VideoMode)
}

func (r *LcdControllerRegs) writeDispcnt(data uint16) {
	v := uint32(data)
	r.VideoMode = uint8(util.Bits(v, 0, 2))
	r.ActiveDisplayPage = uint8(util.Bit(v, 4))
	r.ForcedBlankEnabled = util.Bit(v, 7) != 0
	r.BGLayerEnabled[0] = util.Bit(v, 8) != 0
	r.BGLayerEnabled[1] = util.Bit(v, 9) != 0
	r.BGLayerEnabled[2] = util.Bit(v, 10) != 0
	r.BGLayerEnabled[3] = util.Bit(v, 11) != 0
}

func (r *LcdControllerRegs) dispcntValue() uint16 {
	v := uint32(r.VideoMode) & 0x7
	v |= uint32(r.ActiveDisplayPage) << 4
	if r.ForcedBlankEnabled {
		v |= 1 << 7
	}
	for i, enabled := range r.BGLayerEnabled {
		if enabled {
			v |= 1 << uint(8+i)
		}
	}
	return uint16(v)
}

func (r *LcdControllerRegs) writeBgcnt(i int, data uint16) {
	v := uint32(data)
	bg := &r.BG[i]
	bg.Priority = uint8(util.Bits(v, 0, 1))
	bg.CharBase = uint8(util.Bits(v, 2, 3))
	if util.Bit(v, 7) != 0 {
		bg.PaletteMode = Pal256
	} else {
		bg.PaletteMode = Pal16
	}
	bg.MapBase = uint8(util.Bits(v, 8, 12))
	bg.SizeMode = uint8(util.Bits(v, 14, 15))
}

func (r *LcdControllerRegs) bgcntValue(i int) uint16 {
	bg := r.BG[i]
	v := uint32(bg.Priority) & 0x3
	v |= uint32(bg.CharBase&0x3) << 2
	if bg.PaletteMode == Pal256 {
		v |= 1 << 7
	}
	v |= uint32(bg.MapBase&0x1F) << 8
	v |= uint32(bg.SizeMode&0x3) << 14
	return uint16(v)
}

func (r *LcdControllerRegs) writeBgHofs(i int, data uint16) {
	r.BG[i].XScroll = uint16(util.Bits(uint32(data), 0, 8))
}

func (r *LcdControllerRegs) writeBgVofs(i int, data uint16) {
	r.BG[i].YScroll = uint16(util.Bits(uint32(data), 0, 8))
}
