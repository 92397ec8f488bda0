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
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/tailog"

// Option configures Start and NewWriter.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	meter      metric.Meter
	tracer     trace.Tracer
	output     io.Writer
	dumpOutput io.Writer
}

func newOptions(opts ...Option) *options {
	o := &options{
		meter:      metricnoop.NewMeterProvider().Meter(instrumentationName),
		tracer:     tracenoop.NewTracerProvider().Tracer(instrumentationName),
		output:     os.Stdout,
		dumpOutput: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegistry registers the writer's Prometheus counters with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithMeter records writer counters through an OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		if m != nil {
			o.meter = m
		}
	}
}

// WithTracer traces the monitor's wait and print.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithOutput sets where the monitor prints the recovered tail. Default stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithDumpOutput sets where Writer.Dump writes. Default stderr.
func WithDumpOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.dumpOutput = w
		}
	}
}
