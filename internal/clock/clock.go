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

// Package clock supplies the time source the Writer uses to seed a fresh
// disk signature, kept behind an interface so tests can drive deterministic
// sequences instead of depending on wall-clock time.
package clock

import "time"

// Fields is the subset of the current time the Writer folds into a new
// disk signature: year/month/day/hour/minute/second/millisecond, the same
// shape the real installer derives its signature seed from.
type Fields struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Millisecond          int
}

// Source produces the current time fields. A Source is only ever consulted
// when a disk has a zero signature, and again while the freshly generated
// value collides with another disk's signature.
type Source interface {
	Now() Fields
}

// System is the real wall-clock Source.
type System struct{}

func (System) Now() Fields {
	t := time.Now()
	return Fields{
		Year:        t.Year(),
		Month:       int(t.Month()),
		Day:         t.Day(),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// Seed packs Fields into a 32-bit disk signature the way the installer's
// signature generator does: four bytes, each the sum of a pair of time
// fields (Year+Hour, Year>>8+Minute, Month+Second, Day+Millisecond),
// assembled little-endian.
func (f Fields) Seed() uint32 {
	b0 := byte(f.Year + f.Hour)
	b1 := byte((f.Year >> 8) + f.Minute)
	b2 := byte(f.Month + f.Second)
	b3 := byte(f.Day + f.Millisecond)

	v := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
	if v == 0 {
		v = 1
	}
	return v
}
