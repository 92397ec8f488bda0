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

package main

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/srediag/tailog/pkg/tailog"
)

// harnessEnv makes the test binary behave as the tailog command. Both the
// monitor and the re-executed writer see it.
const harnessEnv = "TAILOG_TEST_HARNESS"

func TestMain(m *testing.M) {
	if os.Getenv(harnessEnv) != "" {
		_ = unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{})
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runHarness(t *testing.T, stdin []byte, args ...string) (stdout []byte, code int) {
	t.Helper()
	cmd := exec.Command(os.Args[0], args...)
	cmd.Env = append(os.Environ(), harnessEnv+"=1")
	cmd.Stdin = bytes.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out

	done := make(chan error, 1)
	require.NoError(t, cmd.Start())
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			t.Fatalf("run tailog %v: %v", args, err)
		}
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatalf("tailog %v did not finish", args)
	}
	return out.Bytes(), cmd.ProcessState.ExitCode()
}

func randomLines(r *rand.Rand, n int) [][]byte {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	lines := make([][]byte, n)
	for i := range lines {
		line := make([]byte, r.IntN(1<<(1+r.IntN(12))))
		for j := range line {
			line[j] = chars[r.IntN(len(chars))]
		}
		lines[i] = line
	}
	return lines
}

func TestHarness_OutputIsTailOfInput(t *testing.T) {
	seed := rand.Uint64()
	t.Logf("seed = %d", seed)
	r := rand.New(rand.NewPCG(seed, seed))

	type params struct{ size, lines int }
	var cases []params
	for _, size := range []int{16, 4096, 0} {
		for _, lines := range []int{0, 1, 128, 1024} {
			cases = append(cases, params{size, lines})
		}
	}
	for range 16 {
		cases = append(cases, params{
			size:  4 + r.IntN(1<<(3+r.IntN(8))-4),
			lines: r.IntN(1 << r.IntN(12)),
		})
	}

	for _, p := range cases {
		lines := randomLines(r, p.lines)
		input := bytes.Join(lines, []byte("\n"))
		if len(lines) > 0 {
			input = append(input, '\n')
		}

		stdout, code := runHarness(t, input, strconv.Itoa(p.size))
		require.Equal(t, 0, code, "size=%d lines=%d", p.size, p.lines)
		if bytes.Equal(stdout, input) {
			continue
		}
		require.True(t, bytes.HasSuffix(input, stdout), "size=%d lines=%d: output is not a tail of the input", p.size, p.lines)
		longest := 0
		for _, l := range lines {
			longest = max(longest, len(l)+1)
		}
		size := p.size
		if size == 0 {
			size = tailog.DefaultRegionSize
		}
		assert.GreaterOrEqual(t, len(stdout), size-2-longest, "size=%d lines=%d", p.size, p.lines)
	}
}

func TestHarness_UsageErrorExits127(t *testing.T) {
	for _, args := range [][]string{{"abc"}, {"16", "32"}, {"--nope"}} {
		stdout, code := runHarness(t, nil, args...)
		assert.Equal(t, usageExitCode, code, args)
		assert.Empty(t, stdout, args)
	}
}

func TestHarness_TooSmallExits1(t *testing.T) {
	stdout, code := runHarness(t, []byte("x\n"), "3")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}

func TestHarness_NULAbortsWriter(t *testing.T) {
	stdout, code := runHarness(t, []byte("ok\na\x00b\n"), "64")
	assert.Equal(t, tailog.AbnormalExitCode, code)
	assert.True(t, strings.HasPrefix(string(stdout), "ok\n"), "stdout: %q", stdout)
	assert.Contains(t, string(stdout), "Writer terminated with signal 6 (SIGABRT)")
}
