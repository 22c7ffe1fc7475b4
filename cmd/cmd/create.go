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
	"github.com/ostafen/partedit/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Create a partition in a free region",
		SilenceUsage: true,
		RunE:         RunCreate,
	}

	cmd.Flags().Int("disk", 0, "disk number")
	cmd.Flags().Int("region", 0, "free region index to create into")
	cmd.Flags().Bool("logical", false, "target a logical free region inside the extended container")
	cmd.Flags().Bool("extended", false, "create the disk's extended container instead of a plain partition")
	cmd.Flags().String("size", "0", "size (e.g. \"512MB\", \"4GB\", or a bare byte count; 0 uses the whole region)")

	return cmd
}

func RunCreate(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	diskNo, _ := cmd.Flags().GetInt("disk")
	regionIdx, _ := cmd.Flags().GetInt("region")
	logical, _ := cmd.Flags().GetBool("logical")
	extended, _ := cmd.Flags().GetBool("extended")
	sizeStr, _ := cmd.Flags().GetString("size")
	size, err := format.ParseBytes(sizeStr)
	if err != nil {
		return fmt.Errorf("cmd: --size: %w", err)
	}

	region, err := selectRegionAt(eng.List, diskNo, regionIdx, logical)
	if err != nil {
		return err
	}

	var created *disk.Region
	if extended {
		created, err = eng.Editor.CreateExtendedPartition(eng.List, region, size)
	} else {
		created, err = eng.Editor.CreatePartition(eng.List, region, size)
	}
	if err != nil {
		return err
	}

	fmt.Printf("created: disk=%d start=%d count=%d type=0x%02x\n", diskNo, created.StartSector, created.SectorCount, byte(created.PartitionType))
	return nil
}
