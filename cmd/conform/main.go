// Command conform runs the JSON conformance vectors in a
// testdata/nes6502/v1-shaped directory against the cpu/bus packages
// outside of go test, for use in CI or ad hoc debugging.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/rp2a03/nes6502cpu/conformance"
)

func main() {
	app := &cli.App{
		Name:  "conform",
		Usage: "run 6502 conformance vectors against the cpu package",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "conformance/testdata/nes6502/v1",
				Usage: "directory of <opcode>.json vector files",
			},
			&cli.StringFlag{
				Name:  "opcode",
				Usage: "run only this opcode's file (e.g. \"a9\"), default all",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	dir := ctx.String("dir")
	filter := ctx.String("opcode")

	byOpcode, err := conformance.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("loading %s: %w", dir, err)
	}

	opcodes := make([]string, 0, len(byOpcode))
	for op := range byOpcode {
		if filter != "" && op != filter {
			continue
		}
		opcodes = append(opcodes, op)
	}
	sort.Strings(opcodes)

	if len(opcodes) == 0 {
		return fmt.Errorf("no vector files matched in %s (opcode filter %q)", dir, filter)
	}

	var totalPass, totalFail int
	for _, op := range opcodes {
		pass, fail := 0, 0
		for _, c := range byOpcode[op] {
			res := conformance.RunCase(c)
			if res.Pass {
				pass++
				continue
			}
			fail++
			fmt.Printf("FAIL %s/%s: registers=%v ram=%v\n", op, c.Name, res.RegisterLog, res.RAMLog)
		}
		fmt.Printf("%s: %d/%d passed\n", op, pass, pass+fail)
		totalPass += pass
		totalFail += fail
	}

	fmt.Printf("\ntotal: %d/%d passed\n", totalPass, totalPass+totalFail)
	if totalFail > 0 {
		return fmt.Errorf("%d case(s) failed", totalFail)
	}
	return nil
}
