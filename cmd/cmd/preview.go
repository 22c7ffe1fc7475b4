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

	"github.com/ostafen/partedit/internal/previewfs"
	"github.com/spf13/cobra"
)

func DefinePreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "preview",
		Short:        "Mount a read-only FUSE view of every scanned disk's regions (Linux only)",
		SilenceUsage: true,
		RunE:         RunPreview,
	}
	cmd.Flags().String("mountpoint", "", "directory to mount the read-only preview filesystem at (required)")
	return cmd
}

func RunPreview(cmd *cobra.Command, args []string) error {
	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		return fmt.Errorf("cmd: --mountpoint is required")
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	return previewfs.Mount(mountpoint, eng.List)
}
