// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"fmt"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/spf13/cobra"
)

func DefineListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List every scanned disk and its regions",
		SilenceUsage: true,
		RunE:         RunList,
	}
	return cmd
}

func RunList(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	for _, d := range eng.List.Disks {
		fmt.Printf("Disk %d  style=%s  signature=%08x  super-floppy=%v\n", d.Number, d.Style, d.Signature, d.SuperFloppy)
		printRegions("  primary", d.Primary)
		printRegions("  logical", d.Logical)
	}
	return nil
}

func printRegions(label string, regions []*disk.Region) {
	for i, r := range regions {
		state := "free"
		if r.IsPartitioned {
			state = fmt.Sprintf("type=0x%02x", byte(r.PartitionType))
		}
		letter := "-"
		if r.Volume.DriveLetter != 0 {
			letter = string(r.Volume.DriveLetter) + ":"
		}
		fmt.Printf("%s[%d] start=%d count=%d %s drive=%s\n", label, i, r.StartSector, r.SectorCount, state, letter)
	}
}
