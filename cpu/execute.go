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

package cpu

import (
	"math/bits"

	"github.com/carraway/advance/bus"
	"github.com/carraway/advance/util"
)

// microAccess is one 32-bit-or-narrower bus transfer belonging to a
// load/store instruction.
type microAccess struct {
	addr  uint32
	width bus.Width
	reg   uint8
}

// pendingDataOp tracks a load or store instruction's bus accesses across
// multiple scheduler cycles. The CPU does not fetch while one of these is
// in flight: the bus serves one master at a time.
type pendingDataOp struct {
	load     bool
	accesses []microAccess
	next     int
	awaiting bool
	pendReg  uint8
	pendWdt  bus.Width
	finalize func(c *CPU)
}

func (c *CPU) continueDataOp() (uint64, bool) {
	op := c.pendingData

	if op.awaiting {
		if op.load {
			c.setR(op.pendReg, extractReadData(c.b.Data, op.pendWdt))
		}
		op.awaiting = false
	}

	if op.next >= len(op.accesses) {
		c.pendingData = nil
		if op.finalize != nil {
			op.finalize(c)
		}
		return 1, false
	}

	idx := op.next
	a := op.accesses[idx]
	op.next++

	if op.load {
		c.b.MakeRequest(bus.Request{Address: a.addr, Width: a.width, Op: bus.OpReadData, Seq: idx > 0})
	} else {
		c.b.Data = extractWriteData(c.R(a.reg), a.width)
		c.b.MakeRequest(bus.Request{Address: a.addr, Width: a.width, Op: bus.OpWrite, Seq: idx > 0})
	}
	op.pendReg = a.reg
	op.pendWdt = a.width
	op.awaiting = true

	return 1, false
}

func extractReadData(busData uint32, width bus.Width) uint32 {
	switch width {
	case bus.Width8:
		return busData & 0xFF
	case bus.Width16:
		return busData & 0xFFFF
	default:
		return busData
	}
}

// extractWriteData mirrors a narrow store value across the full 32-bit
// data latch, as the bus expects of every write.
func extractWriteData(regValue uint32, width bus.Width) uint32 {
	switch width {
	case bus.Width8:
		return (regValue & 0xFF) * 0x01010101
	case bus.Width16:
		return (regValue & 0xFFFF) * 0x00010001
	default:
		return regValue
	}
}

func (c *CPU) executeDataProcessingImmediate(ins DataProcessingImmediate) {
	op2, shifterCarry := rotateImmediate(ins.Imm, ins.Rotate, c.cpsr.C())
	op1 := c.R(ins.Rn)

	r := compute(ins.Opcode, op1, op2, c.cpsr.C(), shifterCarry, c.cpsr.V())

	if ins.S {
		c.cpsr = c.cpsr.SetN(r.value>>31 != 0).SetZ(r.value == 0).SetC(r.carryOut).SetV(r.overflow)
		if ins.Rd == 15 {
			c.cpsr = c.spsr
		}
	}

	if r.writesRd {
		c.setR(ins.Rd, r.value)
	}
}

func (c *CPU) executeLoadStoreImmOffset(ins LoadStoreImmOffset) {
	base := c.R(ins.Rn)
	offset := uint32(ins.Imm12)

	var effective uint32
	if ins.U {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if ins.P {
		addr = effective
	}

	width := bus.Width32
	if ins.B {
		width = bus.Width8
	}

	doWriteback := ins.W || !ins.P
	rn := ins.Rn

	c.pendingData = &pendingDataOp{
		load:     ins.L,
		accesses: []microAccess{{addr: addr, width: width, reg: ins.Rd}},
		finalize: func(c *CPU) {
			if doWriteback {
				c.setR(rn, effective)
			}
		},
	}
}

func (c *CPU) executeLoadStoreHalfImmOffset(ins LoadStoreHalfImmOffset) {
	base := c.R(ins.Rn)
	offset := uint32(ins.ImmHi)<<4 | uint32(ins.ImmLo)

	var effective uint32
	if ins.U {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if ins.P {
		addr = effective
	}

	doWriteback := ins.W || !ins.P
	rn := ins.Rn

	c.pendingData = &pendingDataOp{
		load:     ins.L,
		accesses: []microAccess{{addr: addr, width: bus.Width16, reg: ins.Rd}},
		finalize: func(c *CPU) {
			if doWriteback {
				c.setR(rn, effective)
			}
		},
	}
}

func (c *CPU) executeLoadStoreMultiple(ins LoadStoreMultiple) {
	n := bits.OnesCount16(ins.RegList)
	if n == 0 {
		return
	}

	base := c.R(ins.Rn)
	addrs, writeback := multipleAddresses(base, uint32(n), ins.P, ins.U)

	accesses := make([]microAccess, 0, n)
	i := 0
	for reg := uint8(0); reg < 16; reg++ {
		if ins.RegList&(1<<reg) == 0 {
			continue
		}
		accesses = append(accesses, microAccess{addr: addrs[i], width: bus.Width32, reg: reg})
		i++
	}

	doWriteback := ins.W
	rn := ins.Rn

	c.pendingData = &pendingDataOp{
		load:     ins.L,
		accesses: accesses,
		finalize: func(c *CPU) {
			if doWriteback {
				c.setR(rn, writeback)
			}
		},
	}
}

// multipleAddresses computes the n transfer addresses and final writeback
// value for an LDM/STM, in ascending register order.
func multipleAddresses(base, n uint32, p, u bool) (addrs []uint32, writeback uint32) {
	addrs = make([]uint32, n)
	var start uint32
	if u {
		if p {
			start = base + 4
		} else {
			start = base
		}
		for i := uint32(0); i < n; i++ {
			addrs[i] = start + i*4
		}
		writeback = base + n*4
	} else {
		if p {
			start = base - n*4
		} else {
			start = base - (n-1)*4
		}
		for i := uint32(0); i < n; i++ {
			addrs[i] = start + i*4
		}
		writeback = base - n*4
	}
	return addrs, writeback
}

func (c *CPU) executeBranchImm(ins BranchImm) {
	delta := util.SignExtend(ins.Offset24, 24) << 2
	newPC := uint32(int32(c.pc) + delta)
	if ins.L {
		c.regs[14] = c.pc - 4
	}
	c.setR(15, newPC)
}

// executeBranchAndExchangeReg implements BX. Thumb decoding is out of
// scope: bit 0 of the target would request a state switch, but this core
// always continues in ARM state at the masked address.
func (c *CPU) executeBranchAndExchangeReg(ins BranchAndExchangeReg) {
	target := c.R(ins.Rm)
	c.setR(15, target&^1)
}

func (c *CPU) executeMoveToStatusReg(ins MoveToStatusReg) {
	var mask uint32
	if ins.FieldMask&0x1 != 0 {
		mask |= 0x000000FF
	}
	if ins.FieldMask&0x2 != 0 {
		mask |= 0x0000FF00
	}
	if ins.FieldMask&0x4 != 0 {
		mask |= 0x00FF0000
	}
	if ins.FieldMask&0x8 != 0 {
		mask |= 0xFF000000
	}

	value := c.R(ins.Rm)

	if ins.Saved {
		c.spsr = PSR((uint32(c.spsr) &^ mask) | (value & mask))
	} else {
		c.cpsr = PSR((uint32(c.cpsr) &^ mask) | (value & mask))
	}
}
