package cpu

import "github.com/rp2a03/nes6502cpu/bus"

// Addressing mode resolvers. Each runs before the instruction's operation,
// may consume further bytes at PC (advancing it), sets addrAbs (or addrRel
// for REL), and returns 1 if a page-cross penalty is eligible, 0 otherwise.
// The final cycle adjustment only actually charges the extra cycle if the
// operation also wants it (see cpu.go Clock, and operations.go).

func (c *CPU) amIMP(b *bus.Bus) byte {
	c.isImpliedAddr = true
	c.fetched = c.A
	return 0
}

func (c *CPU) amIMM(b *bus.Bus) byte {
	c.addrAbs = c.PC
	c.PC++
	return 0
}

func (c *CPU) amZP0(b *bus.Bus) byte {
	c.addrAbs = uint16(b.Read(c.PC)) & 0x00FF
	c.PC++
	return 0
}

func (c *CPU) amZPX(b *bus.Bus) byte {
	c.addrAbs = uint16(b.Read(c.PC)+c.X) & 0x00FF
	c.PC++
	return 0
}

func (c *CPU) amZPY(b *bus.Bus) byte {
	c.addrAbs = uint16(b.Read(c.PC)+c.Y) & 0x00FF
	c.PC++
	return 0
}

func (c *CPU) amREL(b *bus.Bus) byte {
	offset := uint16(b.Read(c.PC))
	c.PC++

	if offset&0x80 != 0 {
		offset |= 0xFF00
	}
	c.addrRel = offset
	return 0
}

func (c *CPU) amABS(b *bus.Bus) byte {
	c.addrAbs = c.readWord(b, c.PC)
	c.PC += 2
	return 0
}

func (c *CPU) amABX(b *bus.Bus) byte {
	base := c.readWord(b, c.PC)
	c.PC += 2

	c.addrAbs = base + uint16(c.X)
	if c.addrAbs&0xFF00 != base&0xFF00 {
		return 1
	}
	return 0
}

func (c *CPU) amABY(b *bus.Bus) byte {
	base := c.readWord(b, c.PC)
	c.PC += 2

	c.addrAbs = base + uint16(c.Y)
	if c.addrAbs&0xFF00 != base&0xFF00 {
		return 1
	}
	return 0
}

// amIND reproduces the indirect-JMP page-boundary bug: when the pointer's
// low byte is 0xFF, the high byte of the effective address is fetched from
// ptr & 0xFF00 instead of ptr+1, because the real hardware never carries
// into the high byte of the pointer itself.
func (c *CPU) amIND(b *bus.Bus) byte {
	ptr := c.readWord(b, c.PC)
	c.PC += 2

	lo := b.Read(ptr)
	var hi byte
	if ptr&0x00FF == 0x00FF {
		hi = b.Read(ptr & 0xFF00)
	} else {
		hi = b.Read(ptr + 1)
	}
	c.addrAbs = uint16(hi)<<8 | uint16(lo)
	return 0
}

func (c *CPU) amIZX(b *bus.Bus) byte {
	t := b.Read(c.PC)
	c.PC++

	zp := uint16(t+c.X) & 0x00FF
	lo := b.Read(zp)
	hi := b.Read((zp + 1) & 0x00FF)
	c.addrAbs = uint16(hi)<<8 | uint16(lo)
	return 0
}

func (c *CPU) amIZY(b *bus.Bus) byte {
	t := uint16(b.Read(c.PC))
	c.PC++

	lo := b.Read(t & 0x00FF)
	hi := b.Read((t + 1) & 0x00FF)
	base := uint16(hi)<<8 | uint16(lo)

	c.addrAbs = base + uint16(c.Y)
	if c.addrAbs&0xFF00 != base&0xFF00 {
		return 1
	}
	return 0
}
