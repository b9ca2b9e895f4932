package conformance

import (
	"testing"
)

func TestTestdataVectors(t *testing.T) {
	byOpcode, err := LoadDir("testdata/nes6502/v1")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(byOpcode) == 0 {
		t.Fatal("no test vectors found under testdata/nes6502/v1")
	}

	for opcode, cases := range byOpcode {
		opcode, cases := opcode, cases
		t.Run(opcode, func(t *testing.T) {
			for _, c := range cases {
				c := c
				t.Run(c.Name, func(t *testing.T) {
					res := RunCase(c)
					if !res.Pass {
						t.Errorf("case %q failed:\nregisters: %v\nram: %v\n%s",
							c.Name, res.RegisterLog, res.RAMLog, res.Dump)
					}
				})
			}
		})
	}
}
