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

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"

	"github.com/srediag/tailog/pkg/shm"
)

type counterPair struct {
	prom prometheus.Counter
	otel metric.Int64Counter
}

func (c counterPair) add(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	c.prom.Add(float64(n))
	c.otel.Add(ctx, int64(n))
}

// instruments counts what the writer does with each record. Nothing here
// leaves the writer process unless the caller exports the registry.
type instruments struct {
	appends counterPair
	bytes   counterPair
	resets  counterPair
	drops   counterPair
}

func newInstruments(reg prometheus.Registerer, meter metric.Meter) (*instruments, error) {
	i := &instruments{}
	specs := []struct {
		c        *counterPair
		promName string
		otelName string
		help     string
		unit     string
	}{
		{&i.appends, "tailog_appends_total", "tailog.appends", "Records written to the region.", "{record}"},
		{&i.bytes, "tailog_appended_bytes_total", "tailog.appended_bytes", "Bytes of records written to the region.", "By"},
		{&i.resets, "tailog_resets_total", "tailog.resets", "Times the region tail was zeroed and the cursor moved back to offset 0.", "{reset}"},
		{&i.drops, "tailog_dropped_total", "tailog.dropped", "Records dropped because they can never fit in the region.", "{record}"},
	}
	for _, s := range specs {
		s.c.prom = prometheus.NewCounter(prometheus.CounterOpts{Name: s.promName, Help: s.help})
		if reg != nil {
			if err := reg.Register(s.c.prom); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					return nil, fmt.Errorf("register %s: %w", s.promName, err)
				}
				existing, ok := are.ExistingCollector.(prometheus.Counter)
				if !ok {
					return nil, fmt.Errorf("register %s: %w", s.promName, err)
				}
				s.c.prom = existing
			}
		}
		c, err := meter.Int64Counter(s.otelName, metric.WithDescription(s.help), metric.WithUnit(s.unit))
		if err != nil {
			return nil, fmt.Errorf("otel counter %s: %w", s.otelName, err)
		}
		s.c.otel = c
	}
	return i, nil
}

func (i *instruments) record(ctx context.Context, result shm.AppendResult, n int) {
	switch result {
	case shm.Appended:
		i.appends.add(ctx, 1)
		i.bytes.add(ctx, n)
	case shm.AppendedAfterReset:
		i.resets.add(ctx, 1)
		i.appends.add(ctx, 1)
		i.bytes.add(ctx, n)
	case shm.Dropped:
		// Zeroed once at the cursor and once more from offset 0.
		i.resets.add(ctx, 2)
		i.drops.add(ctx, 1)
	}
}
