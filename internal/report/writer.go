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
package report

import (
	"encoding/xml"
	"io"

	"github.com/ostafen/partedit/internal/disk"
)

// Writer streams a layout report to an io.Writer: a header followed by one
// <disk> element per scanned disk.
type Writer struct {
	w   io.Writer
	enc *xml.Encoder
}

// NewWriter wraps w with an indenting XML encoder.
func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{w: w, enc: enc}
}

// WriteHeader writes the XML declaration and the opening <partitionreport>
// tag carrying hdr's metadata and creator block.
func (w *Writer) WriteHeader(hdr Header) error {
	if _, err := w.w.Write([]byte(xml.Header)); err != nil {
		return err
	}

	start := xml.StartElement{
		Name: xml.Name{Local: "partitionreport"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmloutputversion"}, Value: hdr.XmlOutput},
		},
	}
	if err := w.enc.EncodeToken(start); err != nil {
		return err
	}

	out := hdr.XmlOutput
	hdr.XmlOutput = ""
	if err := w.enc.Encode(hdr); err != nil {
		return err
	}
	hdr.XmlOutput = out
	return nil
}

// WriteDisk encodes one disk's snapshot.
func (w *Writer) WriteDisk(obj DiskObject) error {
	return w.enc.Encode(obj)
}

// WriteList writes a full header plus every disk in list.
func (w *Writer) WriteList(list *disk.PartitionList) error {
	if err := w.WriteHeader(Header{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package:              "partedit",
			ExecutionEnvironment: GetExecEnv(),
		},
	}); err != nil {
		return err
	}
	for _, d := range list.Disks {
		if err := w.WriteDisk(BuildDiskObject(d)); err != nil {
			return err
		}
	}
	return w.Close()
}

// Close writes the closing </partitionreport> tag and flushes the encoder.
func (w *Writer) Close() error {
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "partitionreport"}}); err != nil {
		return err
	}
	return w.enc.Flush()
}
