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
package blockio

import "io"

// ReaderAt adapts a sector-oriented Device to io.ReaderAt, rounding every
// request out to whole sectors before slicing the answer back down to the
// byte range actually asked for.
type ReaderAt struct {
	Dev            Device
	BytesPerSector uint32
}

func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	bps := int64(r.BytesPerSector)
	startLBA := uint64(off / bps)
	endOffset := off + int64(len(p))
	sectors := int((endOffset-off)/bps) + 2

	data, err := r.Dev.ReadSector(startLBA, sectors)
	if err != nil {
		return 0, err
	}

	skip := off - int64(startLBA)*bps
	if skip < 0 || skip >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[skip:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// NewSectionReader returns a seekable view of count sectors starting at lba
// on dev, in terms of byte offsets rather than sectors.
func NewSectionReader(dev Device, bytesPerSector uint32, lba uint64, count uint64) *io.SectionReader {
	ra := &ReaderAt{Dev: dev, BytesPerSector: bytesPerSector}
	bps := int64(bytesPerSector)
	return io.NewSectionReader(ra, int64(lba)*bps, int64(count)*bps)
}
