// Package conformance runs SingleStepTests-style ("Harte") JSON test
// vectors against the cpu/bus packages: one JSON file per opcode byte,
// each holding an array of cases with an initial CPU/RAM state, a final
// state, and the list of bus accesses the real hardware performed.
package conformance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/rp2a03/nes6502cpu/bus"
	"github.com/rp2a03/nes6502cpu/cpu"
)

// RAMEntry is one [address, value] pair from a case's initial/final RAM
// patch list.
type RAMEntry struct {
	Addr  uint16
	Value byte
}

func (e *RAMEntry) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("ram entry: %w", err)
	}
	e.Addr = uint16(pair[0])
	e.Value = byte(pair[1])
	return nil
}

// CycleEntry is one [address, value, "read"|"write"] bus access from a
// case's cycle log.
type CycleEntry struct {
	Addr  uint16
	Value byte
	Kind  string
}

func (e *CycleEntry) UnmarshalJSON(data []byte) error {
	var triple [3]interface{}
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("cycle entry: %w", err)
	}
	addr, ok := triple[0].(float64)
	if !ok {
		return fmt.Errorf("cycle entry: address is not a number")
	}
	val, ok := triple[1].(float64)
	if !ok {
		return fmt.Errorf("cycle entry: value is not a number")
	}
	kind, ok := triple[2].(string)
	if !ok {
		return fmt.Errorf("cycle entry: kind is not a string")
	}
	e.Addr = uint16(addr)
	e.Value = byte(val)
	e.Kind = kind
	return nil
}

// State is one side (initial or final) of a case: the six architectural
// registers plus a sparse RAM patch list.
type State struct {
	PC  uint16     `json:"pc"`
	S   byte       `json:"s"`
	A   byte       `json:"a"`
	X   byte       `json:"x"`
	Y   byte       `json:"y"`
	P   byte       `json:"p"`
	RAM []RAMEntry `json:"ram"`
}

// Case is a single named test vector.
type Case struct {
	Name    string       `json:"name"`
	Initial State        `json:"initial"`
	Final   State        `json:"final"`
	Cycles  []CycleEntry `json:"cycles"`
}

// LoadCases reads one opcode's JSON vector file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// LoadDir reads every *.json file directly under dir, keyed by file name
// without extension (matching the "00", "01", ... opcode-byte naming
// SingleStepTests uses).
func LoadDir(dir string) (map[string][]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]Case)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		cases, err := LoadCases(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		key := e.Name()[:len(e.Name())-len(filepath.Ext(e.Name()))]
		out[key] = cases
	}
	return out, nil
}

// Result is the outcome of running one Case.
type Result struct {
	Case        Case
	Pass        bool
	CyclesWant  int
	CyclesGot   int
	RegisterLog []string // deep.Equal diffs between final registers (want vs got), plus a tick-count mismatch line
	RAMLog      []string // mismatched RAM addresses
	Dump        string   // spew dump of got state, populated only on failure
}

type registers struct {
	A, X, Y, S byte
	PC         uint16
	P          byte
}

// RunCase plays one case against a fresh cpu.CPU and bus.Bus: it applies
// the initial state, steps exactly one instruction, and compares the
// resulting registers, RAM, and tick count against the case's final state
// and cycle log.
func RunCase(c Case) Result {
	b := bus.New()
	for _, e := range c.Initial.RAM {
		b.Write(e.Addr, e.Value)
	}

	cp := cpu.New()
	cp.SetRegisters(c.Initial.A, c.Initial.X, c.Initial.Y, c.Initial.S, c.Initial.PC, c.Initial.P)
	cp.ForceCyclesZero()

	ticks := cp.StepInstruction(b)

	a, x, y, s, pc, p := cp.Registers()
	got := registers{a, x, y, s, pc, p}
	want := registers{c.Final.A, c.Final.X, c.Final.Y, c.Final.S, c.Final.PC, c.Final.P}

	res := Result{
		Case:       c,
		CyclesWant: len(c.Cycles),
		CyclesGot:  ticks,
		Pass:       true,
	}

	if diffs := deep.Equal(want, got); diffs != nil {
		res.Pass = false
		res.RegisterLog = diffs
	}

	for _, e := range c.Final.RAM {
		if gotVal := b.Read(e.Addr); gotVal != e.Value {
			res.Pass = false
			res.RAMLog = append(res.RAMLog, fmt.Sprintf("ram[%#04x] = %#02x, want %#02x", e.Addr, gotVal, e.Value))
		}
	}

	if ticks != res.CyclesWant {
		res.Pass = false
		res.RegisterLog = append(res.RegisterLog, fmt.Sprintf("ticks = %d, want %d", ticks, res.CyclesWant))
	}

	if !res.Pass {
		res.Dump = spew.Sdump(got)
	}

	return res
}
