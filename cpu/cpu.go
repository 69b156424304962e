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

// Package cpu implements ARMv4T instruction decoding and a three-stage
// pipelined execute engine driven by the scheduler, one bus transaction
// at a time.
package cpu

import (
	"github.com/carraway/advance/bus"
	"github.com/carraway/advance/logger"
	"github.com/carraway/advance/scheduler"
)

// CPU holds the ARM register file, current pipeline latches, and the
// state of any in-flight multi-cycle data access.
type CPU struct {
	b *bus.Bus

	regs [15]uint32 // r0-r14; r15 (PC) is tracked separately as pc
	cpsr PSR
	spsr PSR

	pc              uint32
	dOut            DecodedArmInstruction
	sequentialFetch bool
	refillSteps     int

	// resync is true when the bus latch due to be decoded into dOut on the
	// next fetch was last written by something other than an instruction
	// fetch (a data access). That decode is discarded and, instead of
	// feeding dispatch, costs one extra refill cycle so the following
	// fetch -- the first genuine one since the data access -- has time to
	// land before anything dispatches again.
	resync bool

	pendingData *pendingDataOp

	// UndefinedInstructionHook, when set, is called whenever an Undefined
	// or Unknown instruction reaches the execute stage and its condition
	// passes. It observes the fault; it does not change control flow. A
	// future debugger hangs off this.
	UndefinedInstructionHook func(pc uint32, word uint32)
}

// ExtendRegisterFile documents where banked per-mode registers (FIQ, IRQ,
// SVC, ABT, UND) would be added. ARMv4T mode switching beyond the CPSR
// flag bits is not implemented; this is a marker, not a hook that is
// called.
const ExtendRegisterFile = "banked registers (r8_fiq..r14_fiq, r13_irq, r14_irq, ...) are not modeled"

// New returns a CPU wired to b, reset to the given entry point.
func New(b *bus.Bus, resetVector uint32) *CPU {
	c := &CPU{b: b}
	c.Reset(resetVector)
	return c
}

// Reset puts the CPU at resetVector with a freshly refilling pipeline, as
// if a PC discontinuity had just occurred.
func (c *CPU) Reset(resetVector uint32) {
	c.regs = [15]uint32{}
	c.cpsr = 0
	c.spsr = 0
	c.pc = resetVector
	c.dOut = nil
	c.sequentialFetch = false
	c.refillSteps = 2
	c.resync = false
	c.pendingData = nil
}

// Task returns the cooperative task that drives this CPU.
func (c *CPU) Task() scheduler.Task {
	return scheduler.TaskFunc(c.step)
}

// R reads general register n. R(15) returns the program-counter value as
// seen by the currently executing instruction: the address of that
// instruction plus eight, per ARM convention.
func (c *CPU) R(n uint8) uint32 {
	if n == 15 {
		return c.pc
	}
	return c.regs[n]
}

// setR writes general register n. Writing r15 causes a pipeline
// discontinuity: the next two cycles bubble and the following fetch is
// non-sequential.
func (c *CPU) setR(n uint8, v uint32) {
	if n == 15 {
		c.pc = v
		c.refillSteps = 2
		c.sequentialFetch = false
		return
	}
	c.regs[n] = v
}

// SetRForTest seeds general register n directly, bypassing instruction
// execution. Writing r15 does not trigger a pipeline refill: callers
// wiring up a fixture are expected to set the register file before the
// scheduler ever steps the CPU. This exists for test and debugger
// harnesses, the same role Peek/Poke play for Memory.
func (c *CPU) SetRForTest(n uint8, v uint32) {
	if n == 15 {
		c.pc = v
		return
	}
	c.regs[n] = v
}

func (c *CPU) step() (uint64, bool) {
	if c.b.ShouldCPUWait() {
		return 1, false
	}

	if c.pendingData != nil {
		return c.continueDataOp()
	}

	instr := c.dOut
	if c.refillSteps > 0 {
		c.refillSteps--
	} else if instr != nil {
		c.dispatch(instr)
	}

	// A data access may have started inside dispatch; if so, fetch does
	// not run this cycle. The bus is single-ported, so CPU either fetches
	// or accesses data in a given cycle, never both. dispatch does not
	// touch dOut, so the instruction just dispatched is still sitting
	// there; capture the word already waiting in the bus latch -- fetched
	// last cycle, not yet consumed -- as the decode slot's rightful next
	// occupant before the data op's own bus traffic overwrites that latch.
	// Without this the same load/store would still be in dOut once the
	// data op finishes, and dispatch would fire on it again.
	if c.pendingData != nil {
		c.dOut = Decode(c.b.Data)
		c.sequentialFetch = false
		c.resync = true
		return c.continueDataOp()
	}

	newWord := c.b.Data
	c.b.MakeRequest(bus.Request{
		Address: c.pc,
		Width:   bus.Width32,
		Op:      bus.OpReadInstruction,
		Seq:     c.sequentialFetch,
	})
	c.pc += 4
	c.sequentialFetch = true

	c.dOut = Decode(newWord)

	// The bus was busy serving a data op for however many cycles came
	// before this fetch, so what just landed above was not genuinely
	// fetched -- it's whatever the data op last left in the latch. One
	// refill cycle discards that decode; the fetch issued just above is
	// the first real one, and its result will be ready next cycle.
	if c.resync {
		c.resync = false
		if c.refillSteps < 1 {
			c.refillSteps = 1
		}
	}

	return 1, false
}

func (c *CPU) dispatch(instr DecodedArmInstruction) {
	if !c.cpsr.Passes(instr.instructionCond()) {
		return
	}

	switch ins := instr.(type) {
	case DataProcessingImmediate:
		c.executeDataProcessingImmediate(ins)
	case LoadStoreImmOffset:
		c.executeLoadStoreImmOffset(ins)
	case LoadStoreHalfImmOffset:
		c.executeLoadStoreHalfImmOffset(ins)
	case LoadStoreMultiple:
		c.executeLoadStoreMultiple(ins)
	case BranchImm:
		c.executeBranchImm(ins)
	case BranchAndExchangeReg:
		c.executeBranchAndExchangeReg(ins)
	case MoveToStatusReg:
		c.executeMoveToStatusReg(ins)
	case Undefined:
		c.reportUndefined(ins.Word)
	case Unknown:
		c.reportUndefined(ins.Word)
	}
}

func (c *CPU) reportUndefined(word uint32) {
	logger.Logf("cpu", "undefined instruction 0x%08X (pc 0x%08X)", word, c.pc)
	if c.UndefinedInstructionHook != nil {
		c.UndefinedInstructionHook(c.pc, word)
	}
}
