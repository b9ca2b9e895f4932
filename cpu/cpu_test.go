package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp2a03/nes6502cpu/bus"
)

func setup(b *bus.Bus, resetVec uint16) *CPU {
	b.Write(resetVector, byte(resetVec))
	b.Write(resetVector+1, byte(resetVec>>8))

	c := New()
	c.Reset(b)
	c.ForceCyclesZero()
	return c
}

func TestResetLoadsVectorAndPowerOnState(t *testing.T) {
	b := bus.New()
	c := setup(b, 0xC000)

	a, x, y, s, pc, p := c.Registers()
	assert.Equal(t, byte(0), a)
	assert.Equal(t, byte(0), x)
	assert.Equal(t, byte(0), y)
	assert.Equal(t, byte(0xFD), s)
	assert.Equal(t, uint16(0xC000), pc)
	assert.Equal(t, FlagU, p)
}

// Scenario: LDA immediate loads the operand and sets Z/N from it.
func TestScenarioLDAImmediate(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x8000, 0xA9) // LDA #$00
	b.Write(0x8001, 0x00)

	ticks := c.StepInstruction(b)

	a, _, _, _, pc, _ := c.Registers()
	assert.Equal(t, byte(0x00), a)
	assert.True(t, c.getFlag(FlagZ))
	assert.False(t, c.getFlag(FlagN))
	assert.Equal(t, uint16(0x8002), pc)
	assert.Equal(t, 2, ticks)
}

// Scenario: ADC signed overflow sets V when two positives sum negative.
func TestScenarioADCOverflow(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x8000, 0x69) // ADC #$50
	b.Write(0x8001, 0x50)
	c.A = 0x50

	c.StepInstruction(b)

	assert.Equal(t, byte(0xA0), c.A)
	assert.True(t, c.getFlag(FlagV), "0x50+0x50 overflows into a negative result")
	assert.True(t, c.getFlag(FlagN))
	assert.False(t, c.getFlag(FlagC))
}

// Scenario: a taken branch that crosses a page boundary costs two extra
// cycles, not one.
func TestScenarioBranchTakenPageCross(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x80F0)
	b.Write(0x80F0, 0xF0) // BEQ +$20 -> target 0x8112, crosses page
	b.Write(0x80F1, 0x20)
	c.setFlag(FlagZ, true)

	ticks := c.StepInstruction(b)

	_, _, _, _, pc, _ := c.Registers()
	assert.Equal(t, uint16(0x8112), pc)
	assert.Equal(t, 4, ticks, "base 2 + taken 1 + page-cross 1")
}

// Scenario: JMP (IND) with a pointer low byte of 0xFF reproduces the
// hardware page-wrap bug instead of carrying into the next page.
func TestScenarioIndirectJMPPageBug(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x8000, 0x6C) // JMP ($30FF)
	b.Write(0x8001, 0xFF)
	b.Write(0x8002, 0x30)
	b.Write(0x30FF, 0x80)
	b.Write(0x3000, 0x50) // bug: high byte read from 0x3000, not 0x3100
	b.Write(0x3100, 0x99)

	c.StepInstruction(b)

	_, _, _, _, pc, _ := c.Registers()
	assert.Equal(t, uint16(0x5080), pc)
}

// Scenario: popping the stack past empty wraps S around rather than
// panicking or clamping.
func TestScenarioStackUnderflowWraps(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.S = 0xFF

	got := c.pop(b)

	assert.Equal(t, byte(0), got)
	assert.Equal(t, byte(0x00), c.S)
}

// Scenario: BRK pushes PC+2 and P with B and U set, then vectors through
// the IRQ vector.
func TestScenarioBRKFraming(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(irqVector, 0x00)
	b.Write(irqVector+1, 0x90)
	b.Write(0x8000, 0x00) // BRK
	c.P = FlagC | FlagU

	c.StepInstruction(b)

	_, _, _, s, pc, _ := c.Registers()
	require.Equal(t, byte(0xFA), s)

	pushedP := b.Read(stackBase + uint16(s) + 1)
	pushedPCLo := b.Read(stackBase + uint16(s) + 2)
	pushedPCHi := b.Read(stackBase + uint16(s) + 3)

	assert.Equal(t, FlagC|FlagU|FlagB, pushedP)
	assert.Equal(t, uint16(0x8002), uint16(pushedPCHi)<<8|uint16(pushedPCLo))
	assert.Equal(t, uint16(0x9000), pc)
	assert.True(t, c.getFlag(FlagI))
}

// Round-trip: PHA/PLA preserves A and touches no other register.
func TestRoundTripPushPop(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.A = 0x77

	c.push(b, c.A)
	c.A = 0x00
	c.A = c.pop(b)

	assert.Equal(t, byte(0x77), c.A)
}

// Round-trip: JSR/RTS returns to the instruction after the call.
func TestRoundTripJSRRTS(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x8000, 0x20) // JSR $9000
	b.Write(0x8001, 0x00)
	b.Write(0x8002, 0x90)
	b.Write(0x9000, 0x60) // RTS

	c.StepInstruction(b)
	_, _, _, _, pc, _ := c.Registers()
	assert.Equal(t, uint16(0x9000), pc)

	c.StepInstruction(b)
	_, _, _, _, pc, _ = c.Registers()
	assert.Equal(t, uint16(0x8003), pc)
}

// Round-trip: PHP/PLP restores flags, forcing B low and U high again.
func TestRoundTripPHPPLP(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.P = FlagC | FlagN

	c.push(b, c.P|FlagB|FlagU)
	c.P = 0
	c.P = c.pop(b)
	c.setFlag(FlagB, false)
	c.setFlag(FlagU, true)

	assert.True(t, c.getFlag(FlagC))
	assert.True(t, c.getFlag(FlagN))
	assert.False(t, c.getFlag(FlagB))
	assert.True(t, c.getFlag(FlagU))
}

// Round-trip: BRK then RTI returns to the instruction after BRK with flags
// restored.
func TestRoundTripBRKRTI(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(irqVector, 0x00)
	b.Write(irqVector+1, 0x90)
	b.Write(0x8000, 0x00) // BRK
	b.Write(0x9000, 0x40) // RTI
	c.P = FlagC

	c.StepInstruction(b)
	c.StepInstruction(b)

	_, _, _, _, pc, p := c.Registers()
	assert.Equal(t, uint16(0x8002), pc)
	assert.True(t, p&FlagC != 0)
}

func TestOpADCCarryIn(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.A = 0x01
	c.fetched = 0x01
	c.setFlag(FlagC, true)
	c.isImpliedAddr = true

	c.addWithCarry(c.fetched)

	assert.Equal(t, byte(0x03), c.A)
	assert.False(t, c.getFlag(FlagC))
}

func TestOpSBCBorrow(t *testing.T) {
	c := New()
	c.A = 0x00
	c.setFlag(FlagC, true) // no borrow in

	c.addWithCarry(0x01 ^ 0xFF)

	assert.Equal(t, byte(0xFF), c.A)
	assert.False(t, c.getFlag(FlagC), "borrow occurred")
	assert.True(t, c.getFlag(FlagN))
}

func TestOpCMPEqual(t *testing.T) {
	c := New()
	c.A = 0x40
	c.fetched = 0x40

	c.compare(c.A)

	assert.True(t, c.getFlag(FlagZ))
	assert.True(t, c.getFlag(FlagC))
	assert.False(t, c.getFlag(FlagN))
}

func TestOpCMPLess(t *testing.T) {
	c := New()
	c.A = 0x10
	c.fetched = 0x20

	c.compare(c.A)

	assert.False(t, c.getFlag(FlagC))
	assert.True(t, c.getFlag(FlagN))
}

func TestOpLSRShiftsOutCarry(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.isImpliedAddr = true
	c.A = 0x03
	c.fetched = 0x03

	c.writeShiftResult(b, c.fetched>>1)
	c.setFlag(FlagC, c.fetched&0x01 != 0)

	assert.Equal(t, byte(0x01), c.A)
	assert.True(t, c.getFlag(FlagC))
	assert.False(t, c.getFlag(FlagN))
}

func TestOpINXWraps(t *testing.T) {
	c := New()
	c.X = 0xFF

	c.opINX(nil)

	assert.Equal(t, byte(0x00), c.X)
	assert.True(t, c.getFlag(FlagZ))
}

func TestOpBITFlagsFromFetchedNotAccumulator(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x00, 0xC0) // N and V set, Z: A & mem == 0
	c.A = 0x01

	c.addrAbs = 0x00
	c.opBIT(b)

	assert.True(t, c.getFlag(FlagZ))
	assert.True(t, c.getFlag(FlagN))
	assert.True(t, c.getFlag(FlagV))
}

func TestIRQIgnoredWhenMasked(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.setFlag(FlagI, true)
	before := c.PC

	c.IRQ(b)

	assert.Equal(t, before, c.PC)
}

func TestNMIAlwaysFires(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	c.setFlag(FlagI, true)
	b.Write(nmiVector, 0x00)
	b.Write(nmiVector+1, 0xA0)

	c.NMI(b)

	_, _, _, _, pc, _ := c.Registers()
	assert.Equal(t, uint16(0xA000), pc)
	assert.Equal(t, uint8(8), c.RemainingCycles())
}

func TestClockCountsDownThenFetchesNext(t *testing.T) {
	b := bus.New()
	c := setup(b, 0x8000)
	b.Write(0x8000, 0xEA) // NOP, 2 cycles

	c.Clock(b)
	require.Equal(t, uint8(1), c.RemainingCycles())

	c.Clock(b)
	assert.Equal(t, uint8(0), c.RemainingCycles())
}
