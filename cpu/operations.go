package cpu

import "github.com/rp2a03/nes6502cpu/bus"

// Operations consume c.fetched/c.addrAbs and mutate registers, flags, and
// memory. Each returns 1 if it wants the page-cross penalty an addressing
// mode may have signaled, 0 otherwise; cpu.go's Clock ANDs the two
// together, which is the historical shortcut that matches observed
// hardware timings for the official opcodes (see e.g. STA,ABX: a page
// cross there never costs an extra cycle, because opSTA always returns 0).

func (c *CPU) setZN(v byte) {
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagN, v&0x80 != 0)
}

// --- Load/store ---

func (c *CPU) opLDA(b *bus.Bus) byte {
	c.fetch(b)
	c.A = c.fetched
	c.setZN(c.A)
	return 1
}

func (c *CPU) opLDX(b *bus.Bus) byte {
	c.fetch(b)
	c.X = c.fetched
	c.setZN(c.X)
	return 1
}

func (c *CPU) opLDY(b *bus.Bus) byte {
	c.fetch(b)
	c.Y = c.fetched
	c.setZN(c.Y)
	return 1
}

func (c *CPU) opSTA(b *bus.Bus) byte {
	b.Write(c.addrAbs, c.A)
	return 0
}

func (c *CPU) opSTX(b *bus.Bus) byte {
	b.Write(c.addrAbs, c.X)
	return 0
}

func (c *CPU) opSTY(b *bus.Bus) byte {
	b.Write(c.addrAbs, c.Y)
	return 0
}

// --- Register transfers ---

func (c *CPU) opTAX(b *bus.Bus) byte {
	c.X = c.A
	c.setZN(c.X)
	return 0
}

func (c *CPU) opTAY(b *bus.Bus) byte {
	c.Y = c.A
	c.setZN(c.Y)
	return 0
}

func (c *CPU) opTXA(b *bus.Bus) byte {
	c.A = c.X
	c.setZN(c.A)
	return 0
}

func (c *CPU) opTYA(b *bus.Bus) byte {
	c.A = c.Y
	c.setZN(c.A)
	return 0
}

func (c *CPU) opTSX(b *bus.Bus) byte {
	c.X = c.S
	c.setZN(c.X)
	return 0
}

func (c *CPU) opTXS(b *bus.Bus) byte {
	// No flag change: S is not an arithmetic register.
	c.S = c.X
	return 0
}

// --- Stack ---

func (c *CPU) opPHA(b *bus.Bus) byte {
	c.push(b, c.A)
	return 0
}

func (c *CPU) opPHP(b *bus.Bus) byte {
	c.push(b, c.P|FlagB|FlagU)
	return 0
}

func (c *CPU) opPLA(b *bus.Bus) byte {
	c.A = c.pop(b)
	c.setZN(c.A)
	return 0
}

func (c *CPU) opPLP(b *bus.Bus) byte {
	c.P = c.pop(b)
	c.setFlag(FlagB, false)
	c.setFlag(FlagU, true)
	return 0
}

// --- Logical ---

func (c *CPU) opAND(b *bus.Bus) byte {
	c.fetch(b)
	c.A &= c.fetched
	c.setZN(c.A)
	return 1
}

func (c *CPU) opEOR(b *bus.Bus) byte {
	c.fetch(b)
	c.A ^= c.fetched
	c.setZN(c.A)
	return 1
}

func (c *CPU) opORA(b *bus.Bus) byte {
	c.fetch(b)
	c.A |= c.fetched
	c.setZN(c.A)
	return 1
}

func (c *CPU) opBIT(b *bus.Bus) byte {
	c.fetch(b)
	c.setFlag(FlagZ, c.A&c.fetched == 0)
	c.setFlag(FlagN, c.fetched&0x80 != 0)
	c.setFlag(FlagV, c.fetched&0x40 != 0)
	return 0
}

// --- Arithmetic ---

// addWithCarry is the single primitive behind ADC and SBC; SBC calls it
// with the operand's bits inverted, which produces the correct
// two's-complement subtract-with-borrow.
func (c *CPU) addWithCarry(operand byte) {
	carry := uint16(0)
	if c.getFlag(FlagC) {
		carry = 1
	}

	sum := uint16(c.A) + uint16(operand) + carry

	c.setFlag(FlagC, sum > 0xFF)
	result := byte(sum)
	c.setFlag(FlagZ, result == 0)
	c.setFlag(FlagN, sum&0x80 != 0)

	overflow := (^(c.A ^ operand) & (c.A ^ result) & 0x80) != 0
	c.setFlag(FlagV, overflow)

	c.A = result
}

func (c *CPU) opADC(b *bus.Bus) byte {
	c.fetch(b)
	c.addWithCarry(c.fetched)
	return 1
}

func (c *CPU) opSBC(b *bus.Bus) byte {
	c.fetch(b)
	c.addWithCarry(c.fetched ^ 0xFF)
	return 1
}

func (c *CPU) compare(reg byte) {
	diff := uint16(reg) - uint16(c.fetched)

	c.setFlag(FlagC, reg >= c.fetched)
	c.setFlag(FlagZ, byte(diff) == 0)
	c.setFlag(FlagN, diff&0x80 != 0)
}

func (c *CPU) opCMP(b *bus.Bus) byte {
	c.fetch(b)
	c.compare(c.A)
	return 1
}

func (c *CPU) opCPX(b *bus.Bus) byte {
	c.fetch(b)
	c.compare(c.X)
	return 0
}

func (c *CPU) opCPY(b *bus.Bus) byte {
	c.fetch(b)
	c.compare(c.Y)
	return 0
}

// --- Inc/dec ---

func (c *CPU) opINC(b *bus.Bus) byte {
	c.fetch(b)
	result := c.fetched + 1
	b.Write(c.addrAbs, result)
	c.setZN(result)
	return 0
}

func (c *CPU) opDEC(b *bus.Bus) byte {
	c.fetch(b)
	result := c.fetched - 1
	b.Write(c.addrAbs, result)
	c.setZN(result)
	return 0
}

func (c *CPU) opINX(b *bus.Bus) byte {
	c.X++
	c.setZN(c.X)
	return 0
}

func (c *CPU) opINY(b *bus.Bus) byte {
	c.Y++
	c.setZN(c.Y)
	return 0
}

func (c *CPU) opDEX(b *bus.Bus) byte {
	c.X--
	c.setZN(c.X)
	return 0
}

func (c *CPU) opDEY(b *bus.Bus) byte {
	c.Y--
	c.setZN(c.Y)
	return 0
}

// --- Shifts/rotates ---
// These operate on A when the addressing mode was IMP, otherwise on memory
// at addrAbs. All set N,Z from the result.

func (c *CPU) writeShiftResult(b *bus.Bus, result byte) {
	if c.isImpliedAddr {
		c.A = result
	} else {
		b.Write(c.addrAbs, result)
	}
	c.setZN(result)
}

func (c *CPU) opASL(b *bus.Bus) byte {
	c.fetch(b)
	c.setFlag(FlagC, c.fetched&0x80 != 0)
	c.writeShiftResult(b, c.fetched<<1)
	return 0
}

func (c *CPU) opLSR(b *bus.Bus) byte {
	c.fetch(b)
	c.setFlag(FlagC, c.fetched&0x01 != 0)
	c.writeShiftResult(b, c.fetched>>1)
	return 0
}

func (c *CPU) opROL(b *bus.Bus) byte {
	c.fetch(b)
	var carryIn byte
	if c.getFlag(FlagC) {
		carryIn = 1
	}
	c.setFlag(FlagC, c.fetched&0x80 != 0)
	c.writeShiftResult(b, (c.fetched<<1)|carryIn)
	return 0
}

func (c *CPU) opROR(b *bus.Bus) byte {
	c.fetch(b)
	var carryIn byte
	if c.getFlag(FlagC) {
		carryIn = 0x80
	}
	c.setFlag(FlagC, c.fetched&0x01 != 0)
	c.writeShiftResult(b, (c.fetched>>1)|carryIn)
	return 0
}

// --- Jumps/calls ---

func (c *CPU) opJMP(b *bus.Bus) byte {
	c.PC = c.addrAbs
	return 0
}

func (c *CPU) opJSR(b *bus.Bus) byte {
	ret := c.PC - 1
	c.push(b, byte(ret>>8))
	c.push(b, byte(ret))
	c.PC = c.addrAbs
	return 0
}

func (c *CPU) opRTS(b *bus.Bus) byte {
	lo := c.pop(b)
	hi := c.pop(b)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.PC++
	return 0
}

func (c *CPU) opRTI(b *bus.Bus) byte {
	c.P = c.pop(b)
	c.setFlag(FlagB, false)
	c.setFlag(FlagU, true)

	lo := c.pop(b)
	hi := c.pop(b)
	c.PC = uint16(hi)<<8 | uint16(lo)
	return 0
}

// --- Branches ---
// Condition met: add a cycle, compute the target, add a further cycle if
// the branch crosses a page, then jump. Not taken: no extra cycles.

func (c *CPU) branch(taken bool) {
	if !taken {
		return
	}

	c.cycles++
	target := c.PC + c.addrRel
	if target&0xFF00 != c.PC&0xFF00 {
		c.cycles++
	}
	c.PC = target
}

func (c *CPU) opBCC(b *bus.Bus) byte { c.branch(!c.getFlag(FlagC)); return 0 }
func (c *CPU) opBCS(b *bus.Bus) byte { c.branch(c.getFlag(FlagC)); return 0 }
func (c *CPU) opBEQ(b *bus.Bus) byte { c.branch(c.getFlag(FlagZ)); return 0 }
func (c *CPU) opBNE(b *bus.Bus) byte { c.branch(!c.getFlag(FlagZ)); return 0 }
func (c *CPU) opBMI(b *bus.Bus) byte { c.branch(c.getFlag(FlagN)); return 0 }
func (c *CPU) opBPL(b *bus.Bus) byte { c.branch(!c.getFlag(FlagN)); return 0 }
func (c *CPU) opBVC(b *bus.Bus) byte { c.branch(!c.getFlag(FlagV)); return 0 }
func (c *CPU) opBVS(b *bus.Bus) byte { c.branch(c.getFlag(FlagV)); return 0 }

// --- Flag ops ---

func (c *CPU) opCLC(b *bus.Bus) byte { c.setFlag(FlagC, false); return 0 }
func (c *CPU) opSEC(b *bus.Bus) byte { c.setFlag(FlagC, true); return 0 }
func (c *CPU) opCLD(b *bus.Bus) byte { c.setFlag(FlagD, false); return 0 }
func (c *CPU) opSED(b *bus.Bus) byte { c.setFlag(FlagD, true); return 0 }
func (c *CPU) opCLI(b *bus.Bus) byte { c.setFlag(FlagI, false); return 0 }
func (c *CPU) opSEI(b *bus.Bus) byte { c.setFlag(FlagI, true); return 0 }
func (c *CPU) opCLV(b *bus.Bus) byte { c.setFlag(FlagV, false); return 0 }

// --- System ---

func (c *CPU) opNOP(b *bus.Bus) byte { return 0 }

func (c *CPU) opBRK(b *bus.Bus) byte {
	c.PC++ // skip the padding byte after the BRK opcode

	c.push(b, byte(c.PC>>8))
	c.push(b, byte(c.PC))
	c.push(b, c.P|FlagB|FlagU)

	c.setFlag(FlagI, true)
	c.PC = c.readWord(b, irqVector)
	return 0
}

// opXXX is the sink for unmapped opcodes: it leaves all state unchanged
// and the table charges it the default 2 base cycles.
func (c *CPU) opXXX(b *bus.Bus) byte { return 0 }
