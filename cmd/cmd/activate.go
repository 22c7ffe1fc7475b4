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
	"github.com/ostafen/partedit/internal/editor"
	"github.com/spf13/cobra"
)

func DefineActivateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "activate",
		Short:        "Set the active (boot) partition, or find the current system partition",
		SilenceUsage: true,
		RunE:         RunActivate,
	}

	cmd.Flags().Int("disk", 0, "disk number")
	cmd.Flags().Int("partition", 1, "on-disk partition number")
	cmd.Flags().Bool("find-system", false, "print the resolved system partition instead of activating one")
	cmd.Flags().Bool("force-select", false, "search --alt-disk even when it is the system disk (the alt hints are used only when the system disk has no candidate)")
	cmd.Flags().Int("alt-disk", -1, "fallback disk number to search with --find-system (-1 = none)")
	cmd.Flags().Int("alt-partition", 0, "fallback on-disk partition number on --alt-disk (0 = none)")

	return cmd
}

func RunActivate(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	findSystem, _ := cmd.Flags().GetBool("find-system")
	diskNo, _ := cmd.Flags().GetInt("disk")

	if findSystem {
		forceSelect, _ := cmd.Flags().GetBool("force-select")
		altDiskNo, _ := cmd.Flags().GetInt("alt-disk")
		altPartNo, _ := cmd.Flags().GetInt("alt-partition")

		var altDisk *disk.Disk
		if altDiskNo >= 0 {
			altDisk = eng.List.GetDiskByNumber(altDiskNo)
		}
		var altPart *disk.Region
		if altDisk != nil && altPartNo > 0 {
			altPart = eng.List.GetPartition(altDisk, altPartNo)
		}

		r := editor.FindSupportedSystemPartition(eng.List, forceSelect, altDisk, altPart)
		if r == nil {
			fmt.Println("no supported system partition found")
			return nil
		}
		fmt.Printf("system partition: disk=%d start=%d count=%d\n", r.Disk.Number, r.StartSector, r.SectorCount)
		return nil
	}

	partNo, _ := cmd.Flags().GetInt("partition")
	region, err := selectRegion(eng.List, diskNo, partNo)
	if err != nil {
		return err
	}

	if !editor.SetActivePartition(eng.List, region) {
		return fmt.Errorf("cmd: could not activate disk=%d partition=%d", diskNo, partNo)
	}

	fmt.Printf("activated: disk=%d partition=%d\n", diskNo, partNo)
	return nil
}
