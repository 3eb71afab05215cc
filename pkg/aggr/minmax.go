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

package aggr

import (
	"fmt"
	"math"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// extremumFunc keeps the best value per group under beats. The
// identity is the worst representable value, so min starts from the
// numeric maximum and max from the numeric minimum.
type extremumFunc[V data.Value] struct {
	name  string
	acc   arena[V]
	beats func(challenger, incumbent V) bool
}

func (e *extremumFunc[V]) Describe() string {
	return e.name
}

func (e *extremumFunc[V]) MaxGroup() int {
	return e.acc.maxGroup()
}

func (e *extremumFunc[V]) fold(group int, val V) {
	if !e.acc.isSeen(group) || e.beats(val, e.acc.get(group)) {
		e.acc.set(group, val)
	} else {
		// mark the slot seen even when the incumbent stays
		e.acc.set(group, e.acc.get(group))
	}
}

func (e *extremumFunc[V]) AddRawInput(groups *data.LongBlock, values data.AnyBlock) error {
	return forEachGroupValue(e.name, groups, values, func(group int, val V) error {
		e.fold(group, val)
		return nil
	})
}

func (e *extremumFunc[V]) AddIntermediateInput(groups *data.LongBlock, state []data.AnyBlock) error {
	if len(state) != 2 {
		return common.IllegalState(
			"%s expects 2 intermediate blocks, got %d", e.name, len(state))
	}
	best, ok := state[0].(*data.Block[V])
	if !ok {
		return common.IllegalState(
			"%s cannot combine %s partial state", e.name, state[0].Type())
	}
	seen, ok := state[1].(*data.BoolBlock)
	if !ok {
		return common.IllegalState(
			"%s expects a boolean seen column, got %s", e.name, state[1].Type())
	}
	if best.PositionCount() != groups.PositionCount() ||
		seen.PositionCount() != groups.PositionCount() {
		return common.ShapeMismatch(
			"%s: partial state misaligned with groups", e.name)
	}
	for p := 0; p < groups.PositionCount(); p++ {
		group, err := groupAt(groups, p)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		if group < 0 {
			continue
		}
		if !seen.Get(seen.FirstValueIndex(p)) {
			continue
		}
		e.fold(group, best.Get(best.FirstValueIndex(p)))
	}
	return nil
}

func (e *extremumFunc[V]) EvaluateIntermediate(selected []int) ([]data.AnyBlock, error) {
	best := make([]V, len(selected))
	seen := make([]bool, len(selected))
	for i, g := range selected {
		best[i] = e.acc.get(g)
		seen[i] = e.acc.isSeen(g)
	}
	return []data.AnyBlock{data.NewBlock(best...), data.NewBlock(seen...)}, nil
}

func (e *extremumFunc[V]) EvaluateFinal(selected []int) (data.AnyBlock, error) {
	out := make([]V, len(selected))
	for i, g := range selected {
		out[i] = e.acc.get(g)
	}
	return data.NewBlock(out...), nil
}

func newMin[V data.Value](identity V) *extremumFunc[V] {
	return &extremumFunc[V]{
		name: fmt.Sprintf("min of %s", TypeNameOf[V]()),
		acc:  newArena(identity),
		beats: func(challenger, incumbent V) bool {
			return lessValue(challenger, incumbent)
		},
	}
}

func newMax[V data.Value](identity V) *extremumFunc[V] {
	return &extremumFunc[V]{
		name: fmt.Sprintf("max of %s", TypeNameOf[V]()),
		acc:  newArena(identity),
		beats: func(challenger, incumbent V) bool {
			return lessValue(incumbent, challenger)
		},
	}
}

func MinInts() GroupingAggregatorFunction    { return newMin[int32](math.MaxInt32) }
func MinLongs() GroupingAggregatorFunction   { return newMin[int64](math.MaxInt64) }
func MinDoubles() GroupingAggregatorFunction { return newMin[float64](math.MaxFloat64) }

func MaxInts() GroupingAggregatorFunction    { return newMax[int32](math.MinInt32) }
func MaxLongs() GroupingAggregatorFunction   { return newMax[int64](math.MinInt64) }
func MaxDoubles() GroupingAggregatorFunction { return newMax[float64](-math.MaxFloat64) }
