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

// Package system wires the scheduler, bus, memory unit, CPU and PPU
// together into one runnable machine, and drives it one host frame at a
// time against a Display sink. Nothing here implements emulation logic of
// its own: it is the composition root spec.md's component diagram
// describes, realised as Go values instead of a diagram.
package system

import (
	"github.com/carraway/advance/bus"
	"github.com/carraway/advance/cpu"
	"github.com/carraway/advance/hardware/clocks"
	"github.com/carraway/advance/memory"
	"github.com/carraway/advance/ppu"
	"github.com/carraway/advance/random"
	"github.com/carraway/advance/scheduler"
)

// Display is anything that can accept one finished frame of BGR555
// scanlines. gui/sdl.Host satisfies this.
type Display interface {
	UpdateFrame(rows [ppu.ScreenHeight][ppu.ScreenWidth]uint16) error
}

// System owns every in-scope subsystem and the scheduler that drives
// them.
type System struct {
	sched *scheduler.Scheduler
	bus   *bus.Bus
	mem   *memory.Memory
	cpu   *cpu.CPU
	regs  *ppu.LcdControllerRegs
	rn    *ppu.Renderer

	scanline int
	frame    [ppu.ScreenHeight][ppu.ScreenWidth]uint16
}

// New constructs a System with the CPU reset to resetVector and the
// cartridge image and optional BIOS image loaded into memory.
func New(biosImage, cartROM []byte, cartSRAMSize int, timing memory.CartTiming, resetVector uint32) *System {
	s := &System{sched: scheduler.New()}

	s.bus = bus.New()
	s.mem = memory.New(s.bus, biosImage, cartROM, cartSRAMSize, timing)
	s.mem.SeedGarbage(random.NewRandom(s.sched))
	s.cpu = cpu.New(s.bus, resetVector)

	s.regs = ppu.NewLcdControllerRegs()
	s.rn = ppu.NewRenderer(s.regs)
	s.mem.SetMMIOHandler(s.regs)

	// the CPU must be enqueued before the memory unit so that at every
	// cycle the CPU's bus request is already visible when memory runs.
	s.sched.AddTask(s.cpu.Task())
	s.sched.AddTask(s.mem.Task())

	return s
}

// LoadVRAM and LoadPalette copy a raw dump directly into VRAM/palette
// memory, bypassing the bus entirely. This is for driving the PPU from a
// captured memory image rather than a running CPU; copying stops at
// whichever of len(data) or the region's capacity is smaller.
func (s *System) LoadVRAM(data []byte) {
	copy(s.mem.VRAMView(), data)
}

func (s *System) LoadPalette(data []byte) {
	copy(s.mem.PaletteView(), data)
}

// RunFrame advances the scheduler through one full frame's worth of
// cycles, rendering each visible scanline as the scheduler's cycle count
// crosses it, and hands the finished frame to disp.
func (s *System) RunFrame(disp Display) error {
	for s.scanline = 0; s.scanline < clocks.ScanlinesPerFrame; s.scanline++ {
		s.sched.RunFor(clocks.CyclesPerScanline)

		if s.scanline < clocks.VisibleScanlines {
			s.frame[s.scanline] = s.rn.RenderLine(s.scanline, s.mem.VRAMView(), s.mem.OAMView(), s.mem.PaletteView())
		}
	}

	return disp.UpdateFrame(s.frame)
}

// CPU exposes the underlying CPU for test and debugger harnesses.
func (s *System) CPU() *cpu.CPU {
	return s.cpu
}

// Scheduler exposes the underlying scheduler for test and debugger
// harnesses.
func (s *System) Scheduler() *scheduler.Scheduler {
	return s.sched
}
