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

// tailog reads lines from stdin and logs each one into a crash-survivable
// tail log. When it exits, the last lines that fit in the region are printed
// to stdout by the monitor process.
//
//	tailog [--dump] [--metrics-file PATH] [size]
//
// size is the region size in bytes, in any Go integer literal form (1024,
// 0x400, 0o2000, 02000); 0 or absent means 2 MiB.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/srediag/tailog/api"
	"github.com/srediag/tailog/pkg/tailog"
)

const usageExitCode = 127

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return usageExitCode }

type config struct {
	size        int
	dump        bool
	metricsFile string
}

func main() {
	if err := run(os.Args[1:], os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "tailog: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func parseArgs(args []string) (*config, error) {
	cfg := &config{}
	flagSet := pflag.NewFlagSet("tailog", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&cfg.dump, "dump", false, "dump the raw region to stderr before exiting")
	flagSet.StringVar(&cfg.metricsFile, "metrics-file", "", "write Prometheus counters to this file before exiting")
	if err := flagSet.Parse(args); err != nil {
		return nil, &usageError{"usage: tailog [--dump] [--metrics-file PATH] [size]: " + err.Error()}
	}

	switch flagSet.NArg() {
	case 0:
	case 1:
		size, err := parseSize(flagSet.Arg(0))
		if err != nil {
			return nil, &usageError{"usage: tailog [--dump] [--metrics-file PATH] [size]: " + err.Error()}
		}
		cfg.size = size
	default:
		return nil, &usageError{"usage: tailog [--dump] [--metrics-file PATH] [size]"}
	}
	return cfg, nil
}

func parseSize(s string) (int, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size %q", s)
	}
	if n > uint64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int(n), nil
}

func run(args []string, stdin io.Reader) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	w := tailog.MustStart(cfg.size, tailog.WithRegistry(reg))

	if err := logLines(w, stdin); err != nil {
		return err
	}
	if cfg.dump {
		w.Dump()
	}
	if cfg.metricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// logLines logs every line of r, newline included. A final line without a
// newline is logged as it is.
func logLines(w api.Logger, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if strings.IndexByte(line, 0) >= 0 {
				panic(fmt.Sprintf("input line contains NUL: %q", line))
			}
			w.Logf("%s", line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
}
