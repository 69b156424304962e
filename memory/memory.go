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

// Package memory implements the address-mapped memory unit: BIOS, the two
// work RAMs, palette/VRAM/OAM, MMIO dispatch and the cartridge backing
// store, all served through the shared bus as a single cooperative task.
package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/carraway/advance/bus"
	"github.com/carraway/advance/logger"
	"github.com/carraway/advance/random"
	"github.com/carraway/advance/scheduler"
)

const (
	biosSize    = 16 * 1024
	ewramSize   = 256 * 1024
	iwramSize   = 32 * 1024
	paletteSize = 1024 // 512 entries * 2 bytes
	vramSize    = 96 * 1024
	oamSize     = 1024 // 128 * 4 * 2 bytes

	biosUnlockThreshold = 0x4000

	objBoundaryTileModes   = 0x10000
	objBoundaryBitmapModes = 0x14000
)

// Timing is a pair of wait-state costs, in cycles, for non-sequential and
// sequential accesses of one width.
type Timing struct {
	N int
	S int
}

// CartTiming holds the configurable wait-state costs for cartridge ROM and
// SRAM. Real hardware derives these from the WAITCNT register; this core
// has no WAITCNT emulation, so the values are supplied by whoever
// constructs the memory unit.
type CartTiming struct {
	ROM8  Timing
	ROM16 Timing
	ROM32 Timing
	SRAM  Timing
}

// DefaultCartTiming returns the reset value of WAITCNT on real hardware
// (4 cycles non-sequential, 2 sequential, uniformly) as a sane default.
// It is not a guess at "correct" emulation: a cartridge with real timing
// requirements should supply its own CartTiming.
func DefaultCartTiming() CartTiming {
	t := Timing{N: 4, S: 2}
	return CartTiming{ROM8: t, ROM16: t, ROM32: t, SRAM: t}
}

// MMIOHandler services register reads and writes in the 0x04000000 region
// that belong to another unit (today: the PPU's LCD registers). Offsets
// are relative to 0x04000000.
type MMIOHandler interface {
	ReadRegister(offset uint32) (value uint16, ok bool)
	WriteRegister(offset uint32, value uint16) (ok bool)

	// CurrentMode reports the active video mode, consulted only to decide
	// where the OBJ portion of VRAM begins for the "8-bit writes to OBJ
	// are ignored" rule.
	CurrentMode() int
}

// Memory is the address-mapped memory unit. It owns every RAM-like region
// of the system and runs as a cooperative scheduler.Task, observing
// b.Request once per cycle.
type Memory struct {
	b *bus.Bus

	bios         [biosSize]byte
	biosUnlocked bool
	lastBiosRead uint32

	ewram [ewramSize]byte
	iwram [iwramSize]byte

	palette [paletteSize]byte
	vram    [vramSize]byte
	oam     [oamSize]byte

	cartROM  []byte
	cartSRAM []byte

	timing CartTiming
	mmio   MMIOHandler

	pending *pendingAccess
}

type pendingAccess struct {
	remaining uint64
}

// New constructs a Memory unit. biosImage is copied into the BIOS region
// (truncated or zero-padded to 16 KiB). cartROM is kept by reference, not
// copied. cartSRAMSize sizes the backing SRAM store.
func New(b *bus.Bus, biosImage, cartROM []byte, cartSRAMSize int, timing CartTiming) *Memory {
	m := &Memory{
		b:        b,
		cartROM:  cartROM,
		cartSRAM: make([]byte, cartSRAMSize),
		timing:   timing,
	}
	n := copy(m.bios[:], biosImage)
	_ = n
	return m
}

// SetMMIOHandler registers the unit that services 0x04000000 register
// traffic. A nil handler makes all MMIO reads return zero and all writes
// no-ops (besides the usual diagnostic for unrecognised offsets).
func (m *Memory) SetMMIOHandler(h MMIOHandler) {
	m.mmio = h
}

// Task returns the cooperative task that drives this memory unit. The
// scheduler should add it alongside the CPU's task, after it, so that the
// CPU's request for a cycle is always posted before memory looks at it.
func (m *Memory) Task() scheduler.Task {
	return scheduler.TaskFunc(m.step)
}

func (m *Memory) step() (uint64, bool) {
	if m.pending != nil {
		m.pending.remaining--
		if m.pending.remaining == 0 {
			m.b.Busy = false
			m.b.Clear()
			m.pending = nil
		}
		return 1, false
	}

	req := m.b.Request
	if req == nil {
		return 1, false
	}

	if req.Op == bus.OpReadInstruction {
		m.biosUnlocked = req.Address < biosUnlockThreshold
	}

	topByte := byte(req.Address >> 24)
	cycles := m.access(topByte, *req)

	if cycles <= 1 {
		m.b.Clear()
	} else {
		m.b.Busy = true
		m.pending = &pendingAccess{remaining: uint64(cycles - 1)}
	}

	return 1, false
}

// access performs the read or write for req against the region selected
// by topByte, and returns the wait-state cost in cycles.
func (m *Memory) access(topByte byte, req bus.Request) int {
	switch {
	case topByte == 0x00:
		return m.accessBIOS(req)
	case topByte == 0x02:
		return m.accessRegion(m.ewram[:], req.Address&(ewramSize-1), req, timingFor(Timing{3, 3}, Timing{6, 6}, req.Width))
	case topByte == 0x03:
		return m.accessRegion(m.iwram[:], req.Address&(iwramSize-1), req, Timing{1, 1})
	case topByte == 0x04:
		return m.accessMMIO(req)
	case topByte == 0x05:
		return m.accessPalette(req)
	case topByte == 0x06:
		return m.accessVRAM(req)
	case topByte == 0x07:
		return m.accessOAM(req)
	case topByte >= 0x08 && topByte <= 0x0D:
		return m.accessCartROM(req)
	case topByte == 0x0E:
		return m.accessCartSRAM(req)
	default:
		logger.Logf("memory", "access to unmapped region at 0x%08X", req.Address)
		return 1
	}
}

func timingFor(narrow, wide Timing, width bus.Width) Timing {
	if width == bus.Width32 {
		return wide
	}
	return narrow
}

func (t Timing) pick(seq bool) int {
	if seq {
		return t.S
	}
	return t.N
}

func (m *Memory) accessBIOS(req bus.Request) int {
	if req.Op != bus.OpWrite {
		if m.biosUnlocked {
			offset := req.Address & 0x3FFC
			m.lastBiosRead = binary.LittleEndian.Uint32(m.bios[offset:])
		}
		m.b.Data = m.lastBiosRead
	}
	// writes to BIOS are not possible on real hardware; silently ignored
	return Timing{1, 1}.pick(req.Seq)
}

func (m *Memory) accessRegion(mem []byte, offset uint32, req bus.Request, t Timing) int {
	if req.Op == bus.OpWrite {
		writeGeneric(mem, offset, req.Width, m.b.Data)
	} else {
		m.b.Data = readGeneric(mem, offset, req.Width)
	}
	return t.pick(req.Seq)
}

func (m *Memory) accessMMIO(req bus.Request) int {
	offset := req.Address & 0x00FFFFFF

	if req.Op == bus.OpWrite {
		if m.mmio != nil && m.mmio.WriteRegister(offset, uint16(m.b.Data)) {
			return Timing{1, 1}.pick(req.Seq)
		}
		logger.Logf("memory", "write to unrecognised MMIO register 0x%03X", offset)
		return Timing{1, 1}.pick(req.Seq)
	}

	if m.mmio != nil {
		if v, ok := m.mmio.ReadRegister(offset); ok {
			m.b.Data = mirror16(v)
			return Timing{1, 1}.pick(req.Seq)
		}
	}
	m.b.Data = 0
	return Timing{1, 1}.pick(req.Seq)
}

func (m *Memory) accessPalette(req bus.Request) int {
	offset := req.Address & (paletteSize - 1)
	if req.Op == bus.OpWrite && req.Width == bus.Width8 {
		// 8-bit writes mirror the byte across the addressed half-word
		half := uint16(byte(m.b.Data))
		v := uint16(half) | uint16(half)<<8
		binary.LittleEndian.PutUint16(m.palette[offset&^1:], v)
		return timingFor(Timing{1, 1}, Timing{2, 2}, req.Width).pick(req.Seq)
	}
	return m.accessRegion(m.palette[:], offset, req, timingFor(Timing{1, 1}, Timing{2, 2}, req.Width))
}

func (m *Memory) accessVRAM(req bus.Request) int {
	offset := req.Address & (vramSize - 1)

	objBoundary := uint32(objBoundaryTileModes)
	if m.mmio != nil && m.mmio.CurrentMode() >= 3 {
		objBoundary = objBoundaryBitmapModes
	}

	if req.Op == bus.OpWrite && req.Width == bus.Width8 && offset >= objBoundary {
		// 8-bit writes to the OBJ region are ignored
		return timingFor(Timing{1, 1}, Timing{2, 2}, req.Width).pick(req.Seq)
	}
	return m.accessRegion(m.vram[:], offset, req, timingFor(Timing{1, 1}, Timing{2, 2}, req.Width))
}

func (m *Memory) accessOAM(req bus.Request) int {
	offset := req.Address & (oamSize - 1)
	if req.Op == bus.OpWrite && req.Width == bus.Width8 {
		// 8-bit writes to OAM are ignored
		return Timing{1, 1}.pick(req.Seq)
	}
	return m.accessRegion(m.oam[:], offset, req, Timing{1, 1})
}

func (m *Memory) accessCartROM(req bus.Request) int {
	if len(m.cartROM) == 0 {
		m.b.Data = 0
		return m.timing.ROM16.pick(req.Seq)
	}
	offset := req.Address % uint32(len(m.cartROM))

	var t Timing
	switch req.Width {
	case bus.Width8:
		t = m.timing.ROM8
	case bus.Width32:
		t = m.timing.ROM32
	default:
		t = m.timing.ROM16
	}

	if req.Op == bus.OpWrite {
		// cart ROM is read-only; writes are dropped
		return t.pick(req.Seq)
	}
	m.b.Data = readCartROM(m.cartROM, offset, req.Width)
	return t.pick(req.Seq)
}

// readCartROM reads an aligned value of the given width from cartROM at
// offset, zero-padding any bytes that fall past the end of the file.
// Unlike the fixed-size regions, cartROM's length comes from whatever ROM
// was loaded and is not guaranteed to be a multiple of the access width,
// so a read of the final word cannot assume readGeneric's full-width
// slice is there to take.
func readCartROM(cartROM []byte, offset uint32, width bus.Width) uint32 {
	switch width {
	case bus.Width32:
		return binary.LittleEndian.Uint32(safeWindow(cartROM, offset&^3, 4))
	case bus.Width16:
		return mirror16(binary.LittleEndian.Uint16(safeWindow(cartROM, offset&^1, 2)))
	default:
		return mirror8(safeWindow(cartROM, offset, 1)[0])
	}
}

// safeWindow returns n bytes from mem starting at offset, zero-padding
// whatever portion of that window runs past the end of mem.
func safeWindow(mem []byte, offset uint32, n int) []byte {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		if idx := int(offset) + i; idx < len(mem) {
			buf[i] = mem[idx]
		}
	}
	return buf
}

func (m *Memory) accessCartSRAM(req bus.Request) int {
	if len(m.cartSRAM) == 0 {
		m.b.Data = 0
		return m.timing.SRAM.pick(req.Seq)
	}
	offset := req.Address % uint32(len(m.cartSRAM))
	return m.accessRegion(m.cartSRAM, offset, req, m.timing.SRAM)
}

func mirror8(b byte) uint32 {
	v := uint32(b)
	return v | v<<8 | v<<16 | v<<24
}

func mirror16(h uint16) uint32 {
	v := uint32(h)
	return v | v<<16
}

// readGeneric loads an aligned value of the given width from mem, mirrored
// across the full 32-bit data latch per the bus's byte-lane rules.
func readGeneric(mem []byte, offset uint32, width bus.Width) uint32 {
	switch width {
	case bus.Width32:
		return binary.LittleEndian.Uint32(mem[offset&^3:])
	case bus.Width16:
		return mirror16(binary.LittleEndian.Uint16(mem[offset&^1:]))
	default:
		return mirror8(mem[offset])
	}
}

// writeGeneric stores the lane(s) of data actually addressed by width;
// unaddressed lanes are left untouched.
func writeGeneric(mem []byte, offset uint32, width bus.Width, data uint32) {
	switch width {
	case bus.Width32:
		binary.LittleEndian.PutUint32(mem[offset&^3:], data)
	case bus.Width16:
		binary.LittleEndian.PutUint16(mem[offset&^1:], uint16(data))
	default:
		mem[offset] = byte(data)
	}
}

// VRAMView returns a borrowed, read-only view of VRAM for the PPU's
// scanline renderer. The PPU must not retain it past a single render call;
// the memory unit may mutate the backing array on the very next bus cycle.
func (m *Memory) VRAMView() []byte {
	return m.vram[:]
}

// PaletteView returns a borrowed, read-only view of palette memory, with
// the same lifetime contract as VRAMView.
func (m *Memory) PaletteView() []byte {
	return m.palette[:]
}

// OAMView returns a borrowed, read-only view of OAM, with the same
// lifetime contract as VRAMView.
func (m *Memory) OAMView() []byte {
	return m.oam[:]
}

// SeedGarbage fills EWRAM and IWRAM with r's deterministic pseudo-random
// noise, standing in for the undefined contents real hardware leaves in
// work RAM before anything has written to it. Call this once, immediately
// after New, before the CPU or any loaded dump has had a chance to write
// real values in.
func (m *Memory) SeedGarbage(r *random.Random) {
	for i := 0; i+4 <= len(m.ewram); i += 4 {
		binary.LittleEndian.PutUint32(m.ewram[i:], r.Word32(i))
	}
	for i := 0; i+4 <= len(m.iwram); i += 4 {
		binary.LittleEndian.PutUint32(m.iwram[i:], r.Word32(i))
	}
}

// Peek reads a single byte from the address-mapped space without going
// through the bus or charging any wait states. Intended for debugger and
// test use only.
func (m *Memory) Peek(address uint32) (byte, error) {
	topByte := byte(address >> 24)
	switch {
	case topByte == 0x00:
		return m.bios[address&(biosSize-1)], nil
	case topByte == 0x02:
		return m.ewram[address&(ewramSize-1)], nil
	case topByte == 0x03:
		return m.iwram[address&(iwramSize-1)], nil
	case topByte == 0x05:
		return m.palette[address&(paletteSize-1)], nil
	case topByte == 0x06:
		return m.vram[address&(vramSize-1)], nil
	case topByte == 0x07:
		return m.oam[address&(oamSize-1)], nil
	case topByte >= 0x08 && topByte <= 0x0D:
		if len(m.cartROM) == 0 {
			return 0, nil
		}
		return m.cartROM[address%uint32(len(m.cartROM))], nil
	case topByte == 0x0E:
		if len(m.cartSRAM) == 0 {
			return 0, nil
		}
		return m.cartSRAM[address%uint32(len(m.cartSRAM))], nil
	default:
		return 0, fmt.Errorf("memory: peek at unmapped address 0x%08X", address)
	}
}

// Poke writes a single byte to the address-mapped space without going
// through the bus or charging any wait states. Intended for debugger and
// test use only.
func (m *Memory) Poke(address uint32, value byte) error {
	topByte := byte(address >> 24)
	switch {
	case topByte == 0x02:
		m.ewram[address&(ewramSize-1)] = value
	case topByte == 0x03:
		m.iwram[address&(iwramSize-1)] = value
	case topByte == 0x05:
		m.palette[address&(paletteSize-1)] = value
	case topByte == 0x06:
		m.vram[address&(vramSize-1)] = value
	case topByte == 0x07:
		m.oam[address&(oamSize-1)] = value
	case topByte == 0x0E:
		if len(m.cartSRAM) == 0 {
			return fmt.Errorf("memory: poke to cart SRAM of size zero")
		}
		m.cartSRAM[address%uint32(len(m.cartSRAM))] = value
	default:
		return fmt.Errorf("memory: poke at unmapped or read-only address 0x%08X", address)
	}
	return nil
}
