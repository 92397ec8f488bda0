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
	"os"
	rtdebug "runtime/debug"
	"strconv"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/srediag/tailog/internal/debug"
	internalshm "github.com/srediag/tailog/internal/shm"
	"github.com/srediag/tailog/pkg/shm"
)

const (
	// DefaultRegionSize is used when Start is given a size hint of 0.
	DefaultRegionSize = 2 * 1024 * 1024

	// RegionFdEnv marks the re-executed writer process and names the
	// descriptor of the inherited region.
	RegionFdEnv = "TAILOG_REGION_FD"

	// regionFd is the descriptor the writer receives the region on,
	// right after stdin, stdout and stderr.
	regionFd = 3
)

var startLogger = debug.New("start", nil)

// Start splits the program into a writer and a monitor sharing a region of
// sizeHint bytes (0 means DefaultRegionSize).
//
// In the writer it returns the Writer. In the monitor it never returns: it
// waits for the writer to terminate, prints the tail of what was logged to
// stdout, and exits with the writer's exit code, or with AbnormalExitCode
// after printing a diagnostic if the writer was killed.
//
// The writer is a fresh execution of the same binary with the same
// arguments, so Start must run before the program does anything it should
// not do twice. Errors are only returned before the split.
func Start(sizeHint int, opts ...Option) (*Writer, error) {
	o := newOptions(opts...)
	ctx := context.Background()

	if v, ok := os.LookupEnv(RegionFdEnv); ok {
		w, err := startWriter(ctx, v, o)
		if err != nil {
			return nil, err
		}
		std.Store(w)
		return w, nil
	}

	size, err := resolveSize(sizeHint)
	if err != nil {
		return nil, err
	}
	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
		Name:   "tailog",
		Size:   size,
		Create: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocateRegion, err)
	}
	startLogger.Debugf("allocated %d-byte region on fd %d", region.Size(), region.Fd)

	signals := catchSignals()
	proc, err := spawnWriter(region)
	if err != nil {
		signals.stop()
		return nil, err
	}
	m := &monitor{
		proc:    proc,
		mem:     region.Addr,
		out:     o.output,
		tracer:  o.tracer,
		log:     debug.New("monitor", nil),
		signals: signals,
	}
	os.Exit(m.run(ctx))
	panic("unreachable")
}

// MustStart is like Start but prints the error and exits with code 1 if the
// split cannot be set up.
func MustStart(sizeHint int, opts ...Option) *Writer {
	w, err := Start(sizeHint, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailog: %v\n", err)
		os.Exit(1)
	}
	return w
}

func resolveSize(sizeHint int) (int, error) {
	if sizeHint < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, sizeHint)
	}
	size := sizeHint
	if size == 0 {
		size = DefaultRegionSize
	}
	if size < shm.MinRegionSize {
		return 0, fmt.Errorf("%w: %d", ErrRegionTooSmall, size)
	}
	if err := checkAvailableMemory(size); err != nil {
		return 0, err
	}
	return size, nil
}

func checkAvailableMemory(size int) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		startLogger.Warnf("skipping memory check: %v", err)
		return nil
	}
	if uint64(size) > vm.Available {
		return fmt.Errorf("%w: %d bytes requested, %d available", ErrRegionTooLarge, size, vm.Available)
	}
	return nil
}

func spawnWriter(region *internalshm.MappedRegion) (*os.Process, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnWriter, err)
	}
	regionFile := os.NewFile(uintptr(region.Fd), "tailog-region")
	proc, err := os.StartProcess(exe, os.Args, &os.ProcAttr{
		Env:   append(os.Environ(), RegionFdEnv+"="+strconv.Itoa(regionFd)),
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr, regionFile},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnWriter, err)
	}
	startLogger.Debugf("started writer pid %d", proc.Pid)
	return proc, nil
}

func startWriter(ctx context.Context, fdValue string, o *options) (*Writer, error) {
	// Children of the writer must not mistake themselves for writers.
	if err := os.Unsetenv(RegionFdEnv); err != nil {
		return nil, err
	}
	// A fatal panic aborts with SIGABRT instead of exiting with status 2, so
	// the monitor reports it like any other crash.
	rtdebug.SetTraceback("crash")
	fd, err := strconv.Atoi(fdValue)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrBadRegionFd, RegionFdEnv, fdValue)
	}
	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{Fd: fd})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRegionFd, err)
	}
	w, err := newWriter(region.Addr, o)
	if err != nil {
		return nil, err
	}
	startLogger.Debugf("writer mapped %d-byte region", region.Size())
	return w, nil
}
