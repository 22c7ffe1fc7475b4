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

	"github.com/spf13/cobra"
)

func DefineDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "delete",
		Short:        "Delete a partition",
		SilenceUsage: true,
		RunE:         RunDelete,
	}

	cmd.Flags().Int("disk", 0, "disk number")
	cmd.Flags().Int("partition", 1, "on-disk partition number")

	return cmd
}

func RunDelete(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	diskNo, _ := cmd.Flags().GetInt("disk")
	partNo, _ := cmd.Flags().GetInt("partition")

	region, err := selectRegion(eng.List, diskNo, partNo)
	if err != nil {
		return err
	}

	if err := eng.Editor.DeletePartition(eng.List, region); err != nil {
		return err
	}

	fmt.Printf("deleted: disk=%d partition=%d\n", diskNo, partNo)
	return nil
}
