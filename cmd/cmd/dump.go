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
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/pbar"
	"github.com/ostafen/partedit/pkg/reader"
	iocopy "github.com/ostafen/partedit/pkg/util/io"
)

// dumpBufferSize bounds how much of the section is buffered in memory at
// once while streaming it out, independent of the partition's total size.
const dumpBufferSize = 1 << 20

func DefineDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dump",
		Short:        "Copy a partition's raw sector range to a file, for backup before repartitioning",
		SilenceUsage: true,
		RunE:         RunDump,
	}

	cmd.Flags().Int("disk", 0, "disk number")
	cmd.Flags().Int("partition", 1, "on-disk partition number")
	cmd.Flags().StringP("output", "o", "", "destination file path (required)")
	cmd.Flags().Bool("progress", false, "render a progress bar while dumping")

	return cmd
}

// progressReader reports every Read through a ProgressBarState, so copying a
// large partition renders a live progress bar.
type progressReader struct {
	r     io.Reader
	state *pbar.ProgressBarState
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.state.ProcessedBytes += int64(n)
	p.state.Render(false)
	return n, err
}

func RunDump(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	diskNo, _ := cmd.Flags().GetInt("disk")
	partNo, _ := cmd.Flags().GetInt("partition")
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		return fmt.Errorf("cmd: --output is required")
	}

	region, err := selectRegion(eng.List, diskNo, partNo)
	if err != nil {
		return err
	}

	dev, err := region.Disk.Open()
	if err != nil {
		return fmt.Errorf("cmd: open disk %d: %w", diskNo, err)
	}
	defer dev.Close()

	bps := region.Disk.Geometry.BytesPerSector
	if bps == 0 {
		bps = 512
	}

	rs, totalSectors := dumpSource(dev, bps, region)
	buffered := reader.NewBufferedReadSeeker(rs, dumpBufferSize)

	var src io.Reader = buffered
	showProgress, _ := cmd.Flags().GetBool("progress")
	var state *pbar.ProgressBarState
	if showProgress {
		state = pbar.NewProgressBarState(int64(totalSectors) * int64(bps))
		src = &progressReader{r: buffered, state: state}
	}

	if err := iocopy.CopyFile(outPath, src); err != nil {
		return fmt.Errorf("cmd: dump disk=%d partition=%d: %w", diskNo, partNo, err)
	}
	if state != nil {
		state.Render(true)
		state.Finish()
	}

	fmt.Printf("dumped disk=%d partition=%d sectors=%d -> %s\n", diskNo, partNo, totalSectors, outPath)
	return nil
}

// dumpSource builds the byte-range view to copy. Dumping the extended
// container itself has no sectors of its own payload: its content is its
// chain of logical volumes, so they're concatenated end to end through a
// single seekable stream instead.
func dumpSource(dev blockio.Device, bps uint32, region *disk.Region) (io.ReadSeeker, uint64) {
	if !region.IsContainer() {
		return blockio.NewSectionReader(dev, bps, region.StartSector, region.SectorCount), region.SectorCount
	}

	var readers []io.ReadSeeker
	var sizes []int64
	var total uint64
	for _, logical := range region.Disk.Logical {
		readers = append(readers, blockio.NewSectionReader(dev, bps, logical.StartSector, logical.SectorCount))
		sizes = append(sizes, int64(logical.SectorCount)*int64(bps))
		total += logical.SectorCount
	}
	if len(readers) == 0 {
		return bytes.NewReader(nil), 0
	}
	return reader.NewMultiReadSeeker(readers, sizes), total
}
