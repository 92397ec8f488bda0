/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shm

import (
	"errors"
	"fmt"
)

// MinRegionSize holds two trailing NULs plus one byte of content.
const MinRegionSize = 4

var (
	// ErrRegionTooSmall is returned for regions shorter than MinRegionSize.
	ErrRegionTooSmall = errors.New("region too small")
	// ErrInconsistent reports a region whose last two bytes are not NUL.
	ErrInconsistent = errors.New("region does not end in two NUL bytes")
)

// AppendResult tells what Append did with a record.
type AppendResult int

const (
	// Appended means the record fit after the cursor.
	Appended AppendResult = iota
	// AppendedAfterReset means the tail was zeroed and the record was written at offset 0.
	AppendedAfterReset
	// Dropped means the record can never fit; the region is left empty.
	Dropped
)

func (r AppendResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case AppendedAfterReset:
		return "appended after reset"
	case Dropped:
		return "dropped"
	}
	return fmt.Sprintf("AppendResult(%d)", int(r))
}

// Region is the writer's view of the log memory: the bytes plus a private
// write cursor. It is not safe for concurrent use.
type Region struct {
	mem    []byte
	cursor int
}

// NewRegion wraps mem, which must be at least MinRegionSize bytes and end in
// two NULs (freshly allocated memory is all zero). The cursor starts at 0.
func NewRegion(mem []byte) (*Region, error) {
	if len(mem) < MinRegionSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrRegionTooSmall, len(mem), MinRegionSize)
	}
	r := &Region{mem: mem}
	if err := r.CheckInvariant(); err != nil {
		return nil, err
	}
	return r, nil
}

// Cap returns the fixed capacity in bytes.
func (r *Region) Cap() int { return len(r.mem) }

// Cursor returns the offset of the next append.
func (r *Region) Cursor() int { return r.cursor }

// Bytes returns the underlying memory, not a copy.
func (r *Region) Bytes() []byte { return r.mem }

// CheckInvariant verifies that the region ends in two NUL bytes.
func (r *Region) CheckInvariant() error {
	n := len(r.mem)
	if n < MinRegionSize {
		return fmt.Errorf("%w: %d bytes", ErrRegionTooSmall, n)
	}
	if r.mem[n-2] != 0 || r.mem[n-1] != 0 {
		return fmt.Errorf("%w: tail is %#02x %#02x", ErrInconsistent, r.mem[n-2], r.mem[n-1])
	}
	if r.cursor < 0 || r.cursor > n-2 {
		return fmt.Errorf("%w: cursor %d out of range", ErrInconsistent, r.cursor)
	}
	return nil
}

func (r *Region) mustBeConsistent() {
	if err := r.CheckInvariant(); err != nil {
		panic(err)
	}
}

// Append writes record followed by a NUL at the cursor. A record that does
// not fit in the remaining tail zeroes the tail from the cursor on and is
// retried once at offset 0; if it does not fit there either it is dropped
// and the region is left fully zeroed. Bytes before the cursor are never
// touched by a reset.
//
// The record must not contain NUL bytes; readers would stop at them.
func (r *Region) Append(record []byte) AppendResult {
	r.mustBeConsistent()
	result := Appended
	for attempt := 0; attempt < 2; attempt++ {
		avail := len(r.mem) - r.cursor
		// The last byte is never written, so the terminator lands at
		// cap-2 at the latest.
		if avail >= 1 && len(record) < avail-1 {
			n := copy(r.mem[r.cursor:], record)
			r.mem[r.cursor+n] = 0
			r.cursor += n
			r.mustBeConsistent()
			return result
		}
		clear(r.mem[r.cursor:])
		r.cursor = 0
		r.mustBeConsistent()
		result = AppendedAfterReset
	}
	// An empty region is a valid tail of the stream.
	return Dropped
}
