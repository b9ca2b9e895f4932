package cpu

import (
	"fmt"
	"reflect"

	"github.com/rp2a03/nes6502cpu/bus"
)

// addrModeTag identifies an addressing-mode resolver by its function
// pointer so the disassembler can format operands without a second,
// hand-kept table: opcodeTable already carries the resolver itself, this
// just recovers which one it is.
func addrModeTag(fn AddrModeFunc) string {
	p := reflect.ValueOf(fn).Pointer()
	for tag, ref := range addrModeTags {
		if reflect.ValueOf(ref).Pointer() == p {
			return tag
		}
	}
	return "???"
}

var addrModeTags = map[string]AddrModeFunc{
	"IMP": (*CPU).amIMP,
	"IMM": (*CPU).amIMM,
	"ZP0": (*CPU).amZP0,
	"ZPX": (*CPU).amZPX,
	"ZPY": (*CPU).amZPY,
	"REL": (*CPU).amREL,
	"ABS": (*CPU).amABS,
	"ABX": (*CPU).amABX,
	"ABY": (*CPU).amABY,
	"IND": (*CPU).amIND,
	"IZX": (*CPU).amIZX,
	"IZY": (*CPU).amIZY,
}

// Disassemble walks b from start to end inclusive, one instruction at a
// time, and returns a line of human-readable text per instruction address.
// It never advances the CPU's own state: it reads the opcode table and
// bus directly, the same way the teacher's disassembler does.
func (c *CPU) Disassemble(b *bus.Bus, start, end uint16) map[uint16]string {
	lines := make(map[uint16]string)

	addr := uint32(start)
	for addr <= uint32(end) {
		lineAddr := uint16(addr)

		opcode := b.Read(uint16(addr))
		addr++

		inst := opcodeTable[opcode]

		var operand string
		switch addrModeTag(inst.AddrMode) {
		case "IMP":
			operand = "{IMP}"
		case "IMM":
			v := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("#$%02X {IMM}", v)
		case "REL":
			v := b.Read(uint16(addr))
			addr++
			offset := uint16(v)
			if offset&0x80 != 0 {
				offset |= 0xFF00
			}
			operand = fmt.Sprintf("$%02X [$%04X] {REL}", v, uint16(addr)+offset)
		case "ZP0":
			lo := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%02X {ZP0}", lo)
		case "ZPX":
			lo := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%02X,X {ZPX}", lo)
		case "ZPY":
			lo := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%02X,Y {ZPY}", lo)
		case "ABS":
			lo := b.Read(uint16(addr))
			addr++
			hi := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%04X {ABS}", uint16(hi)<<8|uint16(lo))
		case "ABX":
			lo := b.Read(uint16(addr))
			addr++
			hi := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%04X,X {ABX}", uint16(hi)<<8|uint16(lo))
		case "ABY":
			lo := b.Read(uint16(addr))
			addr++
			hi := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("$%04X,Y {ABY}", uint16(hi)<<8|uint16(lo))
		case "IND":
			lo := b.Read(uint16(addr))
			addr++
			hi := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("($%04X) {IND}", uint16(hi)<<8|uint16(lo))
		case "IZX":
			lo := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("($%02X,X) {IZX}", lo)
		case "IZY":
			lo := b.Read(uint16(addr))
			addr++
			operand = fmt.Sprintf("($%02X),Y {IZY}", lo)
		}

		lines[lineAddr] = fmt.Sprintf("$%04X: %s %s", lineAddr, inst.Name, operand)
	}

	return lines
}
