// Copyright 2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/vexec/pkg/aggr"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// RunPipelines runs every driver on its own goroutine. The first error
// cancels the remaining drivers through the shared context.
func RunPipelines(ctx context.Context, drivers ...*Driver) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range drivers {
		d := d
		g.Go(func() error {
			_, err := d.Run(gctx)
			return err
		})
	}
	return g.Wait()
}

// AggregatePartitions runs one partial aggregation per partition on a
// worker pool, then merges the partial states into a single function
// and evaluates it. The merge runs on the calling goroutine, partition
// order does not affect the result.
func AggregatePartitions(
	ctx context.Context,
	factory aggr.Factory,
	groupChannel, valueChannel int,
	partitions [][]*data.Page,
	workers int,
) (*data.Page, error) {
	if workers <= 0 {
		workers = len(partitions)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	partials := make([]aggr.GroupingAggregatorFunction, len(partitions))
	errs := make([]error, len(partitions))
	var wg sync.WaitGroup
	for i, part := range partitions {
		i, part := i, part
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// same panic-to-error conversion as the driver loop, so a
			// worker failure surfaces as a structured error naming the
			// partition instead of escaping through the pool
			errs[i] = guard(fmt.Sprintf("partition %d", i), func() error {
				fn := factory()
				for _, page := range part {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					groups, ok := page.Block(groupChannel).(*data.LongBlock)
					if !ok {
						return common.UnsupportedShape(
							"group channel %d is %s, want %s",
							groupChannel, page.Block(groupChannel).Type(), common.INT64)
					}
					if err := fn.AddRawInput(groups, page.Block(valueChannel)); err != nil {
						return err
					}
				}
				partials[i] = fn
				return nil
			})
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	combined := factory()
	for _, partial := range partials {
		if partial == nil {
			continue
		}
		maxGroup := partial.MaxGroup()
		if maxGroup < 0 {
			continue
		}
		selected := make([]int, maxGroup+1)
		ords := data.NewBuilder[int64](maxGroup + 1)
		for g := 0; g <= maxGroup; g++ {
			selected[g] = g
			ords.AppendValue(int64(g))
		}
		ordBlock, err := ords.Build()
		if err != nil {
			return nil, err
		}
		state, err := partial.EvaluateIntermediate(selected)
		if err != nil {
			return nil, err
		}
		if err := combined.AddIntermediateInput(ordBlock, state); err != nil {
			return nil, err
		}
	}

	maxGroup := combined.MaxGroup()
	if maxGroup < 0 {
		return nil, nil
	}
	selected := make([]int, maxGroup+1)
	ords := data.NewBuilder[int64](maxGroup + 1)
	for g := 0; g <= maxGroup; g++ {
		selected[g] = g
		ords.AppendValue(int64(g))
	}
	ordBlock, err := ords.Build()
	if err != nil {
		return nil, err
	}
	result, err := combined.EvaluateFinal(selected)
	if err != nil {
		return nil, err
	}
	return data.NewPage(ordBlock, result)
}
