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
	"bytes"
	"io"
)

// Tail is what a reader can recover from a region without knowing the cursor.
// Both slices alias the region's memory.
type Tail struct {
	// Stale is the leftover fragment from the write cycle before the last
	// reset. It is older than Current.
	Stale []byte
	// Current is the run of records written since the last reset.
	Current []byte
}

// ReadTail splits raw region bytes into the current run (up to the first NUL)
// and the stale fragment (after that NUL, up to the next one). A missing
// terminator means the data runs to the end of mem; nothing past len(mem) is
// ever read.
func ReadTail(mem []byte) Tail {
	end := bytes.IndexByte(mem, 0)
	if end < 0 {
		return Tail{Current: mem}
	}
	stale := mem[end+1:]
	if i := bytes.IndexByte(stale, 0); i >= 0 {
		stale = stale[:i]
	}
	return Tail{Stale: stale, Current: mem[:end]}
}

// Len returns the number of bytes WriteTo writes.
func (t Tail) Len() int { return len(t.Stale) + len(t.Current) }

// WriteTo writes the stale fragment followed by the current run.
func (t Tail) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t.Stale)
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(t.Current)
	return int64(n + m), err
}

func (t Tail) String() string {
	return string(t.Stale) + string(t.Current)
}
