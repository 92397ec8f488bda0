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

package tailog

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"

	"github.com/srediag/tailog/api"
	"github.com/srediag/tailog/internal/debug"
	"github.com/srediag/tailog/pkg/shm"
)

var _ api.Logger = (*Writer)(nil)

// std is the writer returned by the most recent successful Start.
var std atomic.Pointer[Writer]

// Writer appends records to a region. In the normal setup it lives in the
// writer process and the region is shared with a monitor; NewWriter also
// accepts plain memory, which keeps the ring semantics but does not survive
// a crash of the process.
type Writer struct {
	mu      sync.Mutex
	region  *shm.Region
	inst    *instruments
	dumpOut io.Writer
	log     *debug.Logger
}

// NewWriter returns a Writer over mem, which must be zeroed and at least
// shm.MinRegionSize bytes long.
func NewWriter(mem []byte, opts ...Option) (*Writer, error) {
	return newWriter(mem, newOptions(opts...))
}

func newWriter(mem []byte, o *options) (*Writer, error) {
	region, err := shm.NewRegion(mem)
	if err != nil {
		return nil, err
	}
	inst, err := newInstruments(o.registerer, o.meter)
	if err != nil {
		return nil, err
	}
	return &Writer{
		region:  region,
		inst:    inst,
		dumpOut: o.dumpOutput,
		log:     debug.New("writer", nil),
	}, nil
}

// Logf formats according to a format specifier and appends the result. It
// never fails: records that do not fit trigger a reset, and records larger
// than the region are dropped.
func (w *Writer) Logf(format string, args ...any) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = fmt.Fprintf(buf, format, args...)
	w.append(buf.B)
}

// Log formats its arguments like fmt.Sprint and appends the result.
func (w *Writer) Log(args ...any) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = fmt.Fprint(buf, args...)
	w.append(buf.B)
}

func (w *Writer) append(record []byte) {
	w.mu.Lock()
	result := w.region.Append(record)
	w.mu.Unlock()

	w.inst.record(context.Background(), result, len(record))
	if result == shm.Dropped {
		w.log.Debugf("dropped %d-byte record, region holds %d", len(record), w.region.Cap())
	}
}

// Dump writes the raw region grid to the dump output (stderr by default).
func (w *Writer) Dump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.region.Dump(w.dumpOut); err != nil {
		w.log.Warnf("dump: %v", err)
	}
}

// Cap returns the region capacity in bytes.
func (w *Writer) Cap() int { return w.region.Cap() }

// Tail returns what a monitor would print if the writer stopped now.
func (w *Writer) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return shm.ReadTail(w.region.Bytes()).String()
}

// Logf appends to the writer returned by the last successful Start. It does
// nothing before Start.
func Logf(format string, args ...any) {
	if w := std.Load(); w != nil {
		w.Logf(format, args...)
	}
}

// Dump dumps the writer returned by the last successful Start.
func Dump() {
	if w := std.Load(); w != nil {
		w.Dump()
	}
}
