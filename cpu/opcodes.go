package cpu

import "github.com/rp2a03/nes6502cpu/bus"

// AddrModeFunc resolves an addressing mode, returning 1 if a page-cross
// penalty is eligible.
type AddrModeFunc func(*CPU, *bus.Bus) byte

// OperateFunc executes an operation, returning 1 if it wants the
// page-cross penalty an addressing mode may have signaled.
type OperateFunc func(*CPU, *bus.Bus) byte

// Instruction is one entry of the 256-slot opcode dispatch table: a
// mnemonic, an addressing-mode resolver, an operation routine, and the
// base cycle count charged before any page-cross penalty.
type Instruction struct {
	Name     string
	AddrMode AddrModeFunc
	Operate  OperateFunc
	Cycles   uint8
}

// opcodeTable is the 256-entry, compile-time dispatch table: one entry per
// opcode byte, accessible in O(1) by indexing. It is built once, at
// package init, as process-wide read-only data; AddrMode/Operate are Go
// method expressions, so no per-CPU-instance table or closure allocation
// is needed the way the teacher's InstLookup (rebuilt inside every
// NewCpu6502 call) required.
//
// The 151 official NMOS 6502 opcodes are populated per the datasheet; all
// other 105 slots default to illegal.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]Instruction {
	illegal := Instruction{"???", (*CPU).amIMP, (*CPU).opXXX, 2}

	var t [256]Instruction
	for i := range t {
		t[i] = illegal
	}

	set := func(op byte, name string, mode AddrModeFunc, fn OperateFunc, cycles uint8) {
		t[op] = Instruction{name, mode, fn, cycles}
	}

	set(0x00, "BRK", (*CPU).amIMP, (*CPU).opBRK, 7)
	set(0x01, "ORA", (*CPU).amIZX, (*CPU).opORA, 6)
	set(0x05, "ORA", (*CPU).amZP0, (*CPU).opORA, 3)
	set(0x06, "ASL", (*CPU).amZP0, (*CPU).opASL, 5)
	set(0x08, "PHP", (*CPU).amIMP, (*CPU).opPHP, 3)
	set(0x09, "ORA", (*CPU).amIMM, (*CPU).opORA, 2)
	set(0x0A, "ASL", (*CPU).amIMP, (*CPU).opASL, 2)
	set(0x0D, "ORA", (*CPU).amABS, (*CPU).opORA, 4)
	set(0x0E, "ASL", (*CPU).amABS, (*CPU).opASL, 6)

	set(0x10, "BPL", (*CPU).amREL, (*CPU).opBPL, 2)
	set(0x11, "ORA", (*CPU).amIZY, (*CPU).opORA, 5)
	set(0x15, "ORA", (*CPU).amZPX, (*CPU).opORA, 4)
	set(0x16, "ASL", (*CPU).amZPX, (*CPU).opASL, 6)
	set(0x18, "CLC", (*CPU).amIMP, (*CPU).opCLC, 2)
	set(0x19, "ORA", (*CPU).amABY, (*CPU).opORA, 4)
	set(0x1D, "ORA", (*CPU).amABX, (*CPU).opORA, 4)
	set(0x1E, "ASL", (*CPU).amABX, (*CPU).opASL, 7)

	set(0x20, "JSR", (*CPU).amABS, (*CPU).opJSR, 6)
	set(0x21, "AND", (*CPU).amIZX, (*CPU).opAND, 6)
	set(0x24, "BIT", (*CPU).amZP0, (*CPU).opBIT, 3)
	set(0x25, "AND", (*CPU).amZP0, (*CPU).opAND, 3)
	set(0x26, "ROL", (*CPU).amZP0, (*CPU).opROL, 5)
	set(0x28, "PLP", (*CPU).amIMP, (*CPU).opPLP, 4)
	set(0x29, "AND", (*CPU).amIMM, (*CPU).opAND, 2)
	set(0x2A, "ROL", (*CPU).amIMP, (*CPU).opROL, 2)
	set(0x2C, "BIT", (*CPU).amABS, (*CPU).opBIT, 4)
	set(0x2D, "AND", (*CPU).amABS, (*CPU).opAND, 4)
	set(0x2E, "ROL", (*CPU).amABS, (*CPU).opROL, 6)

	set(0x30, "BMI", (*CPU).amREL, (*CPU).opBMI, 2)
	set(0x31, "AND", (*CPU).amIZY, (*CPU).opAND, 5)
	set(0x35, "AND", (*CPU).amZPX, (*CPU).opAND, 4)
	set(0x36, "ROL", (*CPU).amZPX, (*CPU).opROL, 6)
	set(0x38, "SEC", (*CPU).amIMP, (*CPU).opSEC, 2)
	set(0x39, "AND", (*CPU).amABY, (*CPU).opAND, 4)
	set(0x3D, "AND", (*CPU).amABX, (*CPU).opAND, 4)
	set(0x3E, "ROL", (*CPU).amABX, (*CPU).opROL, 7)

	set(0x40, "RTI", (*CPU).amIMP, (*CPU).opRTI, 6)
	set(0x41, "EOR", (*CPU).amIZX, (*CPU).opEOR, 6)
	set(0x45, "EOR", (*CPU).amZP0, (*CPU).opEOR, 3)
	set(0x46, "LSR", (*CPU).amZP0, (*CPU).opLSR, 5)
	set(0x48, "PHA", (*CPU).amIMP, (*CPU).opPHA, 3)
	set(0x49, "EOR", (*CPU).amIMM, (*CPU).opEOR, 2)
	set(0x4A, "LSR", (*CPU).amIMP, (*CPU).opLSR, 2)
	set(0x4C, "JMP", (*CPU).amABS, (*CPU).opJMP, 3)
	set(0x4D, "EOR", (*CPU).amABS, (*CPU).opEOR, 4)
	set(0x4E, "LSR", (*CPU).amABS, (*CPU).opLSR, 6)

	set(0x50, "BVC", (*CPU).amREL, (*CPU).opBVC, 2)
	set(0x51, "EOR", (*CPU).amIZY, (*CPU).opEOR, 5)
	set(0x55, "EOR", (*CPU).amZPX, (*CPU).opEOR, 4)
	set(0x56, "LSR", (*CPU).amZPX, (*CPU).opLSR, 6)
	set(0x58, "CLI", (*CPU).amIMP, (*CPU).opCLI, 2)
	set(0x59, "EOR", (*CPU).amABY, (*CPU).opEOR, 4)
	set(0x5D, "EOR", (*CPU).amABX, (*CPU).opEOR, 4)
	set(0x5E, "LSR", (*CPU).amABX, (*CPU).opLSR, 7)

	set(0x60, "RTS", (*CPU).amIMP, (*CPU).opRTS, 6)
	set(0x61, "ADC", (*CPU).amIZX, (*CPU).opADC, 6)
	set(0x65, "ADC", (*CPU).amZP0, (*CPU).opADC, 3)
	set(0x66, "ROR", (*CPU).amZP0, (*CPU).opROR, 5)
	set(0x68, "PLA", (*CPU).amIMP, (*CPU).opPLA, 4)
	set(0x69, "ADC", (*CPU).amIMM, (*CPU).opADC, 2)
	set(0x6A, "ROR", (*CPU).amIMP, (*CPU).opROR, 2)
	set(0x6C, "JMP", (*CPU).amIND, (*CPU).opJMP, 5)
	set(0x6D, "ADC", (*CPU).amABS, (*CPU).opADC, 4)
	set(0x6E, "ROR", (*CPU).amABS, (*CPU).opROR, 6)

	set(0x70, "BVS", (*CPU).amREL, (*CPU).opBVS, 2)
	set(0x71, "ADC", (*CPU).amIZY, (*CPU).opADC, 5)
	set(0x75, "ADC", (*CPU).amZPX, (*CPU).opADC, 4)
	set(0x76, "ROR", (*CPU).amZPX, (*CPU).opROR, 6)
	set(0x78, "SEI", (*CPU).amIMP, (*CPU).opSEI, 2)
	set(0x79, "ADC", (*CPU).amABY, (*CPU).opADC, 4)
	set(0x7D, "ADC", (*CPU).amABX, (*CPU).opADC, 4)
	set(0x7E, "ROR", (*CPU).amABX, (*CPU).opROR, 7)

	set(0x81, "STA", (*CPU).amIZX, (*CPU).opSTA, 6)
	set(0x84, "STY", (*CPU).amZP0, (*CPU).opSTY, 3)
	set(0x85, "STA", (*CPU).amZP0, (*CPU).opSTA, 3)
	set(0x86, "STX", (*CPU).amZP0, (*CPU).opSTX, 3)
	set(0x88, "DEY", (*CPU).amIMP, (*CPU).opDEY, 2)
	set(0x8A, "TXA", (*CPU).amIMP, (*CPU).opTXA, 2)
	set(0x8C, "STY", (*CPU).amABS, (*CPU).opSTY, 4)
	set(0x8D, "STA", (*CPU).amABS, (*CPU).opSTA, 4)
	set(0x8E, "STX", (*CPU).amABS, (*CPU).opSTX, 4)

	set(0x90, "BCC", (*CPU).amREL, (*CPU).opBCC, 2)
	set(0x91, "STA", (*CPU).amIZY, (*CPU).opSTA, 6)
	set(0x94, "STY", (*CPU).amZPX, (*CPU).opSTY, 4)
	set(0x95, "STA", (*CPU).amZPX, (*CPU).opSTA, 4)
	set(0x96, "STX", (*CPU).amZPY, (*CPU).opSTX, 4)
	set(0x98, "TYA", (*CPU).amIMP, (*CPU).opTYA, 2)
	set(0x99, "STA", (*CPU).amABY, (*CPU).opSTA, 5)
	set(0x9A, "TXS", (*CPU).amIMP, (*CPU).opTXS, 2)
	set(0x9D, "STA", (*CPU).amABX, (*CPU).opSTA, 5)

	set(0xA0, "LDY", (*CPU).amIMM, (*CPU).opLDY, 2)
	set(0xA1, "LDA", (*CPU).amIZX, (*CPU).opLDA, 6)
	set(0xA2, "LDX", (*CPU).amIMM, (*CPU).opLDX, 2)
	set(0xA4, "LDY", (*CPU).amZP0, (*CPU).opLDY, 3)
	set(0xA5, "LDA", (*CPU).amZP0, (*CPU).opLDA, 3)
	set(0xA6, "LDX", (*CPU).amZP0, (*CPU).opLDX, 3)
	set(0xA8, "TAY", (*CPU).amIMP, (*CPU).opTAY, 2)
	set(0xA9, "LDA", (*CPU).amIMM, (*CPU).opLDA, 2)
	set(0xAA, "TAX", (*CPU).amIMP, (*CPU).opTAX, 2)
	set(0xAC, "LDY", (*CPU).amABS, (*CPU).opLDY, 4)
	set(0xAD, "LDA", (*CPU).amABS, (*CPU).opLDA, 4)
	set(0xAE, "LDX", (*CPU).amABS, (*CPU).opLDX, 4)

	set(0xB0, "BCS", (*CPU).amREL, (*CPU).opBCS, 2)
	set(0xB1, "LDA", (*CPU).amIZY, (*CPU).opLDA, 5)
	set(0xB4, "LDY", (*CPU).amZPX, (*CPU).opLDY, 4)
	set(0xB5, "LDA", (*CPU).amZPX, (*CPU).opLDA, 4)
	set(0xB6, "LDX", (*CPU).amZPY, (*CPU).opLDX, 4)
	set(0xB8, "CLV", (*CPU).amIMP, (*CPU).opCLV, 2)
	set(0xB9, "LDA", (*CPU).amABY, (*CPU).opLDA, 4)
	set(0xBA, "TSX", (*CPU).amIMP, (*CPU).opTSX, 2)
	set(0xBC, "LDY", (*CPU).amABX, (*CPU).opLDY, 4)
	set(0xBD, "LDA", (*CPU).amABX, (*CPU).opLDA, 4)
	set(0xBE, "LDX", (*CPU).amABY, (*CPU).opLDX, 4)

	set(0xC0, "CPY", (*CPU).amIMM, (*CPU).opCPY, 2)
	set(0xC1, "CMP", (*CPU).amIZX, (*CPU).opCMP, 6)
	set(0xC4, "CPY", (*CPU).amZP0, (*CPU).opCPY, 3)
	set(0xC5, "CMP", (*CPU).amZP0, (*CPU).opCMP, 3)
	set(0xC6, "DEC", (*CPU).amZP0, (*CPU).opDEC, 5)
	set(0xC8, "INY", (*CPU).amIMP, (*CPU).opINY, 2)
	set(0xC9, "CMP", (*CPU).amIMM, (*CPU).opCMP, 2)
	set(0xCA, "DEX", (*CPU).amIMP, (*CPU).opDEX, 2)
	set(0xCC, "CPY", (*CPU).amABS, (*CPU).opCPY, 4)
	set(0xCD, "CMP", (*CPU).amABS, (*CPU).opCMP, 4)
	set(0xCE, "DEC", (*CPU).amABS, (*CPU).opDEC, 6)

	set(0xD0, "BNE", (*CPU).amREL, (*CPU).opBNE, 2)
	set(0xD1, "CMP", (*CPU).amIZY, (*CPU).opCMP, 5)
	set(0xD5, "CMP", (*CPU).amZPX, (*CPU).opCMP, 4)
	set(0xD6, "DEC", (*CPU).amZPX, (*CPU).opDEC, 6)
	set(0xD8, "CLD", (*CPU).amIMP, (*CPU).opCLD, 2)
	set(0xD9, "CMP", (*CPU).amABY, (*CPU).opCMP, 4)
	set(0xDD, "CMP", (*CPU).amABX, (*CPU).opCMP, 4)
	set(0xDE, "DEC", (*CPU).amABX, (*CPU).opDEC, 7)

	set(0xE0, "CPX", (*CPU).amIMM, (*CPU).opCPX, 2)
	set(0xE1, "SBC", (*CPU).amIZX, (*CPU).opSBC, 6)
	set(0xE4, "CPX", (*CPU).amZP0, (*CPU).opCPX, 3)
	set(0xE5, "SBC", (*CPU).amZP0, (*CPU).opSBC, 3)
	set(0xE6, "INC", (*CPU).amZP0, (*CPU).opINC, 5)
	set(0xE8, "INX", (*CPU).amIMP, (*CPU).opINX, 2)
	set(0xE9, "SBC", (*CPU).amIMM, (*CPU).opSBC, 2)
	set(0xEA, "NOP", (*CPU).amIMP, (*CPU).opNOP, 2)
	set(0xEC, "CPX", (*CPU).amABS, (*CPU).opCPX, 4)
	set(0xED, "SBC", (*CPU).amABS, (*CPU).opSBC, 4)
	set(0xEE, "INC", (*CPU).amABS, (*CPU).opINC, 6)

	set(0xF0, "BEQ", (*CPU).amREL, (*CPU).opBEQ, 2)
	set(0xF1, "SBC", (*CPU).amIZY, (*CPU).opSBC, 5)
	set(0xF5, "SBC", (*CPU).amZPX, (*CPU).opSBC, 4)
	set(0xF6, "INC", (*CPU).amZPX, (*CPU).opINC, 6)
	set(0xF8, "SED", (*CPU).amIMP, (*CPU).opSED, 2)
	set(0xF9, "SBC", (*CPU).amABY, (*CPU).opSBC, 4)
	set(0xFD, "SBC", (*CPU).amABX, (*CPU).opSBC, 4)
	set(0xFE, "INC", (*CPU).amABX, (*CPU).opINC, 7)

	return t
}
