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
package editor

import "fmt"

// Status is the typed outcome of an Editor pre-check or mutation.
type Status int

const (
	Success Status = iota
	NewPartition
	PartitionTableFull
	OnlyOneExtended
	WarnPartition
	TransientIo
	NotPartitioned
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case NewPartition:
		return "NewPartition"
	case PartitionTableFull:
		return "PartitionTableFull"
	case OnlyOneExtended:
		return "OnlyOneExtended"
	case WarnPartition:
		return "WarnPartition"
	case TransientIo:
		return "TransientIo"
	case NotPartitioned:
		return "NotPartitioned"
	default:
		return "Unknown"
	}
}

// StatusError wraps a non-Success Status as an error, for callers using
// Go's err != nil convention on top of the typed taxonomy.
type StatusError struct {
	Status Status
	Err    error // non-nil only for TransientIo
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("editor: %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("editor: %s", e.Status)
}

func (e *StatusError) Unwrap() error { return e.Err }

func statusErr(s Status) error {
	if s == Success {
		return nil
	}
	return &StatusError{Status: s}
}

// TransientIoError wraps an underlying device or registry failure as a
// TransientIo status. The model is unchanged if the failure occurred
// before any mutation; otherwise the offending disk stays dirty and the
// caller may retry.
func TransientIoError(err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Status: TransientIo, Err: err}
}
