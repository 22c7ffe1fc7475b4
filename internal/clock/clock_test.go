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
package clock_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/clock"
	"github.com/stretchr/testify/require"
)

func TestSeedPacksFourBytesFromTimeFields(t *testing.T) {
	f := clock.Fields{Year: 2026, Month: 7, Day: 30, Hour: 14, Minute: 22, Second: 9, Millisecond: 500}

	b0 := byte((2026 + 14) & 0xFF)
	b1 := byte((2026 >> 8) + 22)
	b2 := byte(7 + 9)
	b3 := byte((30 + 500) & 0xFF)
	want := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24

	require.Equal(t, want, f.Seed())
}

func TestSeedNeverReturnsZero(t *testing.T) {
	f := clock.Fields{}

	require.Equal(t, uint32(1), f.Seed())
}
