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
	"io"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Dump renders every byte of the region as a grid, 32 bytes per line, and
// then the cursor. Printable ASCII is shown as " c", newline as `\n`, NUL as
// `\0` and anything else as its decimal code. Dump panics if the region is
// inconsistent after writing; it is meant for debugging only.
func (r *Region) Dump(w io.Writer) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, c := range r.mem {
		switch {
		case c >= 0x20 && c < 0x7f:
			_ = buf.WriteByte(' ')
			_ = buf.WriteByte(c)
		case c == '\n':
			_, _ = buf.WriteString(`\n`)
		case c == 0:
			_, _ = buf.WriteString(`\0`)
		default:
			if c < 10 {
				_ = buf.WriteByte('0')
			}
			buf.B = strconv.AppendUint(buf.B, uint64(c), 10)
		}
		switch {
		case i%32 == 31:
			_ = buf.WriteByte('\n')
		case i%8 == 7:
			_, _ = buf.WriteString("  ")
		default:
			_ = buf.WriteByte(' ')
		}
	}
	_, _ = buf.WriteString("\ncursor = ")
	buf.B = strconv.AppendInt(buf.B, int64(r.cursor), 10)
	_ = buf.WriteByte('\n')

	_, err := w.Write(buf.B)
	r.mustBeConsistent()
	return err
}
