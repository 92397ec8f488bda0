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
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/suite"

	"github.com/srediag/tailog/pkg/shm"
)

type WriterTestSuite struct {
	suite.Suite
	reg *prometheus.Registry
}

func (s *WriterTestSuite) SetupTest() {
	s.reg = prometheus.NewRegistry()
}

func (s *WriterTestSuite) newWriter(size int, opts ...Option) *Writer {
	w, err := NewWriter(make([]byte, size), append([]Option{WithRegistry(s.reg)}, opts...)...)
	s.Require().NoError(err)
	return w
}

// counterValue reads a counter from the suite registry.
func (s *WriterTestSuite) counterValue(name string) float64 {
	families, err := s.reg.Gather()
	s.Require().NoError(err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var m *dto.Metric = mf.GetMetric()[0]
		return m.GetCounter().GetValue()
	}
	s.FailNow("metric not found", name)
	return 0
}

func (s *WriterTestSuite) TestNewWriter_TooSmall() {
	_, err := NewWriter(make([]byte, 3))
	s.Require().ErrorIs(err, shm.ErrRegionTooSmall)
}

func (s *WriterTestSuite) TestLogfFormats() {
	w := s.newWriter(64)
	w.Logf("%s=%d\n", "answer", 42)
	w.Log("x", 1, "\n")
	s.Equal("answer=42\nx1\n", w.Tail())
	s.Equal(64, w.Cap())
}

func (s *WriterTestSuite) TestOverflowCounters() {
	w := s.newWriter(8)
	w.Logf("0001\n")
	w.Logf("0002\n")
	w.Logf("%s", strings.Repeat("z", 8))

	s.Equal("", w.Tail())
	s.Equal(2.0, s.counterValue("tailog_appends_total"))
	s.Equal(10.0, s.counterValue("tailog_appended_bytes_total"))
	// One reset for "0002", two more for the record that never fits.
	s.Equal(3.0, s.counterValue("tailog_resets_total"))
	s.Equal(1.0, s.counterValue("tailog_dropped_total"))
}

func (s *WriterTestSuite) TestDropAtOffsetZeroCountsBothResets() {
	w := s.newWriter(8)
	w.Logf("%s", strings.Repeat("z", 7))

	s.Equal(0.0, s.counterValue("tailog_appends_total"))
	s.Equal(2.0, s.counterValue("tailog_resets_total"))
	s.Equal(1.0, s.counterValue("tailog_dropped_total"))
}

func (s *WriterTestSuite) TestDropThenRecover() {
	w := s.newWriter(16)
	w.Logf("%s\n", strings.Repeat("y", 20))
	w.Logf("after\n")
	s.Equal("after\n", w.Tail())
}

func (s *WriterTestSuite) TestSharedRegistryReusesCounters() {
	w1 := s.newWriter(16)
	w2 := s.newWriter(16)
	w1.Logf("a")
	w2.Logf("b")
	s.Equal(2.0, s.counterValue("tailog_appends_total"))
}

func (s *WriterTestSuite) TestDumpGoesToDumpOutput() {
	var buf bytes.Buffer
	w := s.newWriter(8, WithDumpOutput(&buf))
	w.Logf("hi")
	w.Dump()
	s.Equal(` h  i \0 \0 \0 \0 \0 \0  `+"\ncursor = 2\n", buf.String())
}

func (s *WriterTestSuite) TestPackageLevelBeforeStart() {
	s.Nil(std.Load())
	s.NotPanics(func() {
		Logf("ignored %d", 1)
		Dump()
	})
}

func (s *WriterTestSuite) TestPackageLevelUsesStd() {
	w := s.newWriter(32)
	std.Store(w)
	defer std.Store(nil)
	Logf("via %s\n", "std")
	s.Equal("via std\n", w.Tail())
}

func TestWriterTestSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}
