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
	"fmt"

	"golang.org/x/sys/unix"
)

// AbnormalExitCode is the monitor's exit code when the writer did not exit
// on its own.
const AbnormalExitCode = 126

// TerminationKind classifies a writer's wait status.
type TerminationKind int

const (
	// Exited means the writer called exit.
	Exited TerminationKind = iota
	// Signaled means a signal killed the writer.
	Signaled
	// Unrecognized covers every other wait status.
	Unrecognized
)

func (k TerminationKind) String() string {
	switch k {
	case Exited:
		return "exited"
	case Signaled:
		return "signaled"
	}
	return "unrecognized"
}

// Outcome is the writer's termination as seen by the monitor.
type Outcome struct {
	Kind       TerminationKind
	Code       int
	Signal     unix.Signal
	CoreDumped bool
	Status     unix.WaitStatus
}

// ClassifyStatus turns a raw wait status into an Outcome.
func ClassifyStatus(ws unix.WaitStatus) Outcome {
	switch {
	case ws.Exited():
		return Outcome{Kind: Exited, Code: ws.ExitStatus(), Status: ws}
	case ws.Signaled():
		return Outcome{Kind: Signaled, Signal: ws.Signal(), CoreDumped: ws.CoreDump(), Status: ws}
	}
	return Outcome{Kind: Unrecognized, Status: ws}
}

// ExitCode is the code the monitor exits with.
func (o Outcome) ExitCode() int {
	if o.Kind == Exited {
		return o.Code
	}
	return AbnormalExitCode
}

// Diagnostic is the line the monitor prints after the tail, or "" for a
// normal exit.
func (o Outcome) Diagnostic() string {
	switch o.Kind {
	case Exited:
		return ""
	case Signaled:
		msg := fmt.Sprintf("Writer terminated with signal %d", int(o.Signal))
		if name := unix.SignalName(o.Signal); name != "" {
			msg += " (" + name + ")"
		}
		if o.CoreDumped {
			msg += ", core dumped"
		}
		return msg
	}
	return fmt.Sprintf("Writer terminated, wait status = %d", uint32(o.Status))
}
