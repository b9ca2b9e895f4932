// Package cpu implements a cycle-countable functional emulator of the NMOS
// 6502 (the NES 2A03 variant: binary-coded decimal is never applied, though
// the D flag is still settable). It executes one instruction at a time
// against a bus.Bus, producing an exact total cycle count.
package cpu

import "github.com/rp2a03/nes6502cpu/bus"

// Status flag bit positions, fixed by the hardware: these appear verbatim
// in stack frames and are externally observable.
const (
	FlagC byte = 1 << 0 // Carry
	FlagZ byte = 1 << 1 // Zero
	FlagI byte = 1 << 2 // Interrupt disable
	FlagD byte = 1 << 3 // Decimal mode (never affects ADC/SBC on this variant)
	FlagB byte = 1 << 4 // Break (only ever set in a pushed byte)
	FlagU byte = 1 << 5 // Unused, always observed as 1 on a push
	FlagV byte = 1 << 6 // Overflow
	FlagN byte = 1 << 7 // Negative
)

const (
	stackBase   uint16 = 0x0100
	nmiVector   uint16 = 0xFFFA
	resetVector uint16 = 0xFFFC
	irqVector   uint16 = 0xFFFE
)

// CPU holds the architectural registers plus the transient fields used to
// plumb an in-flight instruction. It never holds a reference to a bus.Bus:
// every entry point takes the bus explicitly, so there is exactly one
// writer to the bus per tick and no cyclic ownership between the two.
type CPU struct {
	A byte   // Accumulator
	X byte   // Index register X
	Y byte   // Index register Y
	S byte   // Stack pointer (low byte; stack lives in page 0x01)
	P byte   // Status flags: N V U B D I Z C
	PC uint16 // Program counter

	fetched byte   // last operand value read for the in-flight instruction
	addrAbs uint16 // effective absolute address for the in-flight instruction
	addrRel uint16 // sign-extended relative offset for branches
	opcode  byte   // opcode of the in-flight instruction
	cycles  uint8  // cycles still owed for the in-flight instruction

	isImpliedAddr bool // true when the current instruction's addressing mode is IMP
}

// New returns a CPU in its all-zero power-on state. Reset must be called
// before Clock/StepInstruction to load PC from the reset vector.
func New() *CPU {
	return &CPU{}
}

// Registers returns the six architectural registers.
func (c *CPU) Registers() (a, x, y, s byte, pc uint16, p byte) {
	return c.A, c.X, c.Y, c.S, c.PC, c.P
}

// SetRegisters overwrites the six architectural registers. It exists so a
// conformance harness can align the CPU to an arbitrary instruction
// boundary without going through Reset.
func (c *CPU) SetRegisters(a, x, y, s byte, pc uint16, p byte) {
	c.A, c.X, c.Y, c.S, c.PC, c.P = a, x, y, s, pc, p
}

// RemainingCycles returns the number of cycles still owed for the
// in-flight instruction.
func (c *CPU) RemainingCycles() uint8 {
	return c.cycles
}

// ForceCyclesZero resets the in-flight cycle counter to zero so the next
// Clock call starts a fresh instruction. This is present specifically so a
// conformance harness can align the CPU to an instruction boundary.
func (c *CPU) ForceCyclesZero() {
	c.cycles = 0
}

func (c *CPU) getFlag(f byte) bool {
	return c.P&f != 0
}

func (c *CPU) setFlag(f byte, v bool) {
	if v {
		c.P |= f
	} else {
		c.P &^= f
	}
}

func (c *CPU) readWord(b *bus.Bus, addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// fetch loads the operand for the in-flight instruction into c.fetched,
// unless the addressing mode was IMP (in which case amIMP already latched
// c.fetched to the accumulator).
func (c *CPU) fetch(b *bus.Bus) byte {
	if !c.isImpliedAddr {
		c.fetched = b.Read(c.addrAbs)
	}
	return c.fetched
}

func (c *CPU) push(b *bus.Bus, data byte) {
	b.Write(stackBase+uint16(c.S), data)
	c.S--
}

func (c *CPU) pop(b *bus.Bus) byte {
	c.S++
	return b.Read(stackBase + uint16(c.S))
}

// Reset brings the CPU to its documented power-up state and loads PC from
// the reset vector. Memory is left untouched: only Reset may legitimately
// load PC from 0xFFFC/0xFFFD.
func (c *CPU) Reset(b *bus.Bus) {
	c.A, c.X, c.Y = 0, 0, 0
	c.P = FlagU
	c.S = 0xFD

	c.addrAbs = resetVector
	c.PC = c.readWord(b, resetVector)

	c.addrRel = 0
	c.fetched = 0
	c.opcode = 0
	c.isImpliedAddr = false

	c.cycles = 8
}

// IRQ requests a maskable interrupt. It is ignored if the interrupt
// disable flag is set.
func (c *CPU) IRQ(b *bus.Bus) {
	if c.getFlag(FlagI) {
		return
	}
	c.interrupt(b, irqVector, 7)
}

// NMI requests a non-maskable interrupt; it is never ignored.
func (c *CPU) NMI(b *bus.Bus) {
	c.interrupt(b, nmiVector, 8)
}

func (c *CPU) interrupt(b *bus.Bus, vector uint16, cycles uint8) {
	c.push(b, byte(c.PC>>8))
	c.push(b, byte(c.PC))

	c.setFlag(FlagB, false)
	c.setFlag(FlagU, true)
	c.setFlag(FlagI, true)
	c.push(b, c.P)

	c.addrAbs = vector
	c.PC = c.readWord(b, vector)
	c.cycles = cycles
}

// Clock runs a single clock cycle. When the previous instruction has fully
// retired (cycles == 0) it fetches the next opcode, resolves its
// addressing mode, executes its operation, and charges the combined
// page-cross penalty; otherwise it simply counts down the cycles already
// owed.
func (c *CPU) Clock(b *bus.Bus) {
	if c.cycles == 0 {
		c.opcode = b.Read(c.PC)
		c.setFlag(FlagU, true)
		c.PC++

		inst := opcodeTable[c.opcode]
		c.cycles = inst.Cycles
		c.isImpliedAddr = false

		addrPenalty := inst.AddrMode(c, b)
		opPenalty := inst.Operate(c, b)
		c.cycles += addrPenalty & opPenalty
	}

	c.cycles--
}

// StepInstruction runs the current instruction to completion: it ticks at
// least once, then continues until cycles reaches zero.
func (c *CPU) StepInstruction(b *bus.Bus) int {
	ticks := 0

	c.Clock(b)
	ticks++

	for c.cycles > 0 {
		c.Clock(b)
		ticks++
	}

	return ticks
}
