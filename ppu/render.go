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

package ppu

import "encoding/binary"

// ScreenWidth and ScreenHeight are the visible LCD dimensions in pixels,
// regardless of the active video mode's own surface size.
const (
	ScreenWidth  = 240
	ScreenHeight = 160
)

const bitmapPaletteBankSize = 0xA000

type layerID int

const (
	layerObj layerID = iota
	layerBG0
	layerBG1
	layerBG2
	layerBG3
	layerBackdrop
)

// layer is one candidate pixel contending for a screen position. Blending
// between the top two layers is an extension point: today the winning
// layer's color is output verbatim, so only color and priority matter.
type layer struct {
	id       layerID
	color    uint16
	priority uint8
}

// Renderer renders scanlines against a register file. RenderAffineBackground
// and RenderObjects are named extension points for mode 2 (affine
// backgrounds) and OBJ compositing: both return no candidate layer today,
// mirroring the gaps the renderer this was modelled on leaves as explicit
// TODOs rather than silent omissions.
type Renderer struct {
	Regs *LcdControllerRegs
}

// NewRenderer returns a Renderer bound to regs. regs is typically the same
// *LcdControllerRegs instance registered with Memory.SetMMIOHandler.
func NewRenderer(regs *LcdControllerRegs) *Renderer {
	return &Renderer{Regs: regs}
}

// RenderAffineBackground is the mode 2 extension point. Affine background
// transforms are not modelled; it always reports no layer.
func (rn *Renderer) RenderAffineBackground(bg int, screenY, screenX int, vram []byte, pal []byte) (layerResult, bool) {
	return layerResult{}, false
}

// RenderObjects is the OBJ compositing extension point. Sprite rendering is
// not modelled; it always reports no layer.
func (rn *Renderer) RenderObjects(screenY, screenX int, vram, oam []byte, pal []byte) (layerResult, bool) {
	return layerResult{}, false
}

// layerResult is the value an extension point hands back: a candidate
// layer's color and priority, independent of this package's internal
// layerID bookkeeping.
type layerResult struct {
	Color    uint16
	Priority uint8
}

// RenderLine produces the 240-pixel BGR555 scanline at screenY, composing
// background and OBJ layers over VRAM, OAM and palette memory. vram, oam
// and pal are borrowed, read-only views into the memory unit's backing
// storage; the renderer never retains them past the call.
func (rn *Renderer) RenderLine(screenY int, vram, oam, pal []byte) [ScreenWidth]uint16 {
	var out [ScreenWidth]uint16

	bgVRAM := vram[:64*1024]
	bgPal := pal[:16*16*2]
	bitmapVRAM := vram[:80*1024]

	for x := 0; x < ScreenWidth; x++ {
		var layers [6]*layer

		if obj, ok := rn.RenderObjects(screenY, x, vram, oam, pal); ok {
			layers[layerObj] = &layer{id: layerObj, color: obj.Color, priority: obj.Priority}
		}

		switch rn.Regs.VideoMode {
		case 0:
			rn.renderTextBackgrounds(&layers, screenY, x, 0, 3, bgVRAM, bgPal)
		case 1:
			rn.renderTextBackgrounds(&layers, screenY, x, 0, 1, bgVRAM, bgPal)
			if rn.Regs.BGLayerEnabled[2] {
				if affine, ok := rn.RenderAffineBackground(2, screenY, x, bgVRAM, bgPal); ok {
					layers[layerBG2] = &layer{id: layerBG2, color: affine.Color, priority: affine.Priority}
				}
			}
		case 2:
			for _, bg := range [2]int{2, 3} {
				if !rn.Regs.BGLayerEnabled[bg] {
					continue
				}
				if affine, ok := rn.RenderAffineBackground(bg, screenY, x, bgVRAM, bgPal); ok {
					layers[1+bg] = &layer{id: layerID(1 + bg), color: affine.Color, priority: affine.Priority}
				}
			}
		case 3:
			if rn.Regs.BGLayerEnabled[2] {
				layers[layerBG2] = renderMode3Pixel(screenY, x, &rn.Regs.BG[2], bitmapVRAM)
			}
		case 4:
			if rn.Regs.BGLayerEnabled[2] {
				layers[layerBG2] = renderMode4Pixel(screenY, x, &rn.Regs.BG[2], rn.Regs.ActiveDisplayPage, bitmapVRAM, bgPal)
			}
		case 5:
			if rn.Regs.BGLayerEnabled[2] {
				layers[layerBG2] = renderMode5Pixel(screenY, x, &rn.Regs.BG[2], rn.Regs.ActiveDisplayPage, bitmapVRAM)
			}
		}

		layers[layerBackdrop] = &layer{
			id:       layerBackdrop,
			color:    readPalette(pal, 0),
			priority: 4,
		}

		out[x] = pickTopLayer(&layers).color
	}

	return out
}

func (rn *Renderer) renderTextBackgrounds(layers *[6]*layer, screenY, screenX int, first, last int, vram, pal []byte) {
	for bg := first; bg <= last; bg++ {
		if !rn.Regs.BGLayerEnabled[bg] {
			continue
		}
		layers[1+bg] = renderTextBgPixel(screenY, screenX, bg, &rn.Regs.BG[bg], vram, pal)
	}
}

// renderTextBgPixel implements the text-mode pixel pipeline: tile/map
// coordinates, screen-block selection, map entry decode, tile flips, and
// the 16-color/256-color pixel fetch.
func renderTextBgPixel(screenY, screenX int, bgID int, bg *BgAttributes, vram, pal []byte) *layer {
	tileX, mapX, submapX := bgCoords(screenX, int(bg.XScroll))
	tileY, mapY, submapY := bgCoords(screenY, int(bg.YScroll))

	var screenBlockOffset int
	switch bg.SizeMode {
	case 0:
		screenBlockOffset = 0
	case 1:
		screenBlockOffset = submapX
	case 2:
		screenBlockOffset = submapY
	case 3:
		screenBlockOffset = submapY*2 + submapX
	}

	screenBlockBase := (int(bg.MapBase) + screenBlockOffset) * 0x800
	entryOffset := screenBlockBase + (mapY*32+mapX)*2
	if entryOffset+1 >= len(vram) {
		return nil
	}
	entry := uint32(binary.LittleEndian.Uint16(vram[entryOffset:]))

	tileID := int(entry & 0x3FF)
	hFlip := (entry>>10)&1 != 0
	vFlip := (entry>>11)&1 != 0
	palID := int((entry >> 12) & 0xF)

	flippedTileX := tileX
	if hFlip {
		flippedTileX = 7 - tileX
	}
	flippedTileY := tileY
	if vFlip {
		flippedTileY = 7 - tileY
	}

	charBase := int(bg.CharBase) * 0x4000

	var paletteIndex byte
	var opaque bool
	switch bg.PaletteMode {
	case Pal16:
		offset := charBase + tileID*32 + flippedTileY*4 + flippedTileX/2
		if offset >= len(vram) {
			return nil
		}
		b := vram[offset]
		pixel := (b >> (uint(flippedTileX%2) * 4)) & 0xF
		paletteIndex = pixel + byte(palID*16)
		opaque = pixel != 0
	case Pal256:
		offset := charBase + tileID*64 + flippedTileY*8 + flippedTileX
		if offset >= len(vram) {
			return nil
		}
		paletteIndex = vram[offset]
		opaque = paletteIndex != 0
	}

	if !opaque {
		return nil
	}

	return &layer{
		id:       layerID(1 + bgID),
		color:    readPalette(pal, int(paletteIndex)),
		priority: bg.Priority,
	}
}

// bgCoords decomposes one screen axis coordinate into (tile-local, map,
// submap) components after applying scroll and wraparound.
func bgCoords(screenAxis int, scroll int) (tile, mapCoord, submap int) {
	axis := (screenAxis + scroll) % 512
	if axis < 0 {
		axis += 512
	}
	return axis % 8, (axis / 8) % 32, axis / 256
}

func renderMode3Pixel(screenY, screenX int, bg *BgAttributes, vram []byte) *layer {
	if screenY >= ScreenHeight || screenX >= ScreenWidth {
		return nil
	}
	offset := (screenY*ScreenWidth + screenX) * 2
	if offset+1 >= len(vram) {
		return nil
	}
	return &layer{
		id:       layerBG2,
		color:    binary.LittleEndian.Uint16(vram[offset:]),
		priority: bg.Priority,
	}
}

func renderMode4Pixel(screenY, screenX int, bg *BgAttributes, page uint8, vram, pal []byte) *layer {
	if screenY >= ScreenHeight || screenX >= ScreenWidth {
		return nil
	}
	pageBase := int(page) * bitmapPaletteBankSize
	offset := pageBase + screenY*ScreenWidth + screenX
	if offset >= len(vram) {
		return nil
	}
	idx := vram[offset]
	if idx == 0 {
		return nil
	}
	return &layer{
		id:       layerBG2,
		color:    readPalette(pal, int(idx)),
		priority: bg.Priority,
	}
}

const (
	mode5Width  = 160
	mode5Height = 128
)

func renderMode5Pixel(screenY, screenX int, bg *BgAttributes, page uint8, vram []byte) *layer {
	if screenY >= mode5Height || screenX >= mode5Width {
		return nil
	}
	pageBase := int(page) * bitmapPaletteBankSize
	offset := pageBase + (screenY*mode5Width+screenX)*2
	if offset+1 >= len(vram) {
		return nil
	}
	return &layer{
		id:       layerBG2,
		color:    binary.LittleEndian.Uint16(vram[offset:]),
		priority: bg.Priority,
	}
}

func readPalette(pal []byte, index int) uint16 {
	offset := index * 2
	if offset+1 >= len(pal) {
		return 0
	}
	return binary.LittleEndian.Uint16(pal[offset:])
}

// pickTopLayer selects the candidate with the lowest priority, ties broken
// by layer order (obj, bg0, bg1, bg2, bg3, backdrop). The backdrop slot is
// always populated, so there is always at least one candidate.
func pickTopLayer(layers *[6]*layer) *layer {
	var top *layer
	for _, l := range layers {
		if l == nil {
			continue
		}
		if top == nil || l.priority < top.priority {
			top = l
		}
	}
	return top
}
