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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"

	"github.com/srediag/tailog/internal/debug"
	"github.com/srediag/tailog/pkg/shm"
)

// monitor is the process that called Start. It owns no cursor and
// touches the region only after the writer is gone.
type monitor struct {
	proc    *os.Process
	mem     []byte
	out     io.Writer
	tracer  trace.Tracer
	log     *debug.Logger
	signals *signalRelay
}

// run waits for the writer, prints the tail and returns the exit code.
func (m *monitor) run(ctx context.Context) int {
	ctx, span := m.tracer.Start(ctx, "tailog.monitor")
	defer span.End()

	m.signals.forwardTo(m.proc, m.log)
	status, err := m.wait(ctx)
	m.signals.stop()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait failed")
		fmt.Fprintf(os.Stderr, "tailog: %v\n", err)
		return 1
	}

	// wait4 has returned: the writer can no longer touch the region.
	outcome := ClassifyStatus(status)
	return m.report(outcome)
}

func (m *monitor) report(outcome Outcome) int {
	tail := shm.ReadTail(m.mem)
	if _, err := tail.WriteTo(m.out); err != nil {
		m.log.Errorf("write tail: %v", err)
	}
	if msg := outcome.Diagnostic(); msg != "" {
		if _, err := fmt.Fprintln(m.out, msg); err != nil {
			m.log.Errorf("write diagnostic: %v", err)
		}
	}
	m.log.Debugf("writer %d %s, printed %d bytes", m.proc.Pid, outcome.Kind, tail.Len())
	return outcome.ExitCode()
}

func (m *monitor) wait(ctx context.Context) (unix.WaitStatus, error) {
	var status unix.WaitStatus
	op := func() error {
		_, err := unix.Wait4(m.proc.Pid, &status, 0, nil)
		if errors.Is(err, unix.EINTR) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(&backoff.ZeroBackOff{}, ctx)); err != nil {
		return 0, fmt.Errorf("%w %d: %w", ErrWaitWriter, m.proc.Pid, err)
	}
	return status, nil
}

// signalRelay keeps the monitor alive while the writer runs. Terminal
// signals reach the writer through the process group, so the monitor only
// swallows its own copy of SIGINT and SIGQUIT. SIGTERM and SIGHUP sent to
// the monitor alone are forwarded.
//
// The signals are caught rather than ignored: an ignored disposition would
// survive the exec into the writer.
type signalRelay struct {
	sigs chan os.Signal
	done chan struct{}
}

// catchSignals must run before the writer is started. Signals that arrive
// before forwardTo stay buffered.
func catchSignals() *signalRelay {
	r := &signalRelay{
		sigs: make(chan os.Signal, 8),
		done: make(chan struct{}),
	}
	signal.Notify(r.sigs, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP)
	return r
}

func (r *signalRelay) forwardTo(proc *os.Process, log *debug.Logger) {
	go func() {
		for {
			select {
			case sig := <-r.sigs:
				if sig == unix.SIGINT || sig == unix.SIGQUIT {
					log.Debugf("monitor ignores %v", sig)
					continue
				}
				log.Infof("forwarding %v to writer %d", sig, proc.Pid)
				if err := proc.Signal(sig); err != nil {
					log.Warnf("forward %v: %v", sig, err)
				}
			case <-r.done:
				return
			}
		}
	}()
}

func (r *signalRelay) stop() {
	signal.Stop(r.sigs)
	close(r.done)
}
