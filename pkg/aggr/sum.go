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

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// sumFunc sums V-typed inputs in an A-typed accumulator. A is the
// widened type where one exists (int32 sums in int64); where none
// does, add fails fast with ArithmeticOverflow instead of wrapping.
type sumFunc[V data.Value, A data.Value] struct {
	name string
	acc  arena[A]
	lift func(V) A
	add  func(A, A) (A, error)
}

func (s *sumFunc[V, A]) Describe() string {
	return s.name
}

func (s *sumFunc[V, A]) MaxGroup() int {
	return s.acc.maxGroup()
}

func (s *sumFunc[V, A]) AddRawInput(groups *data.LongBlock, values data.AnyBlock) error {
	return forEachGroupValue(s.name, groups, values, func(group int, val V) error {
		next, err := s.add(s.acc.get(group), s.lift(val))
		if err != nil {
			return fmt.Errorf("%s: group %d: %w", s.name, group, err)
		}
		s.acc.set(group, next)
		return nil
	})
}

func (s *sumFunc[V, A]) AddIntermediateInput(groups *data.LongBlock, state []data.AnyBlock) error {
	if len(state) != 2 {
		return common.IllegalState(
			"%s expects 2 intermediate blocks, got %d", s.name, len(state))
	}
	sums, ok := state[0].(*data.Block[A])
	if !ok {
		return common.IllegalState(
			"%s cannot combine %s partial sums", s.name, state[0].Type())
	}
	seen, ok := state[1].(*data.BoolBlock)
	if !ok {
		return common.IllegalState(
			"%s expects a boolean seen column, got %s", s.name, state[1].Type())
	}
	if sums.PositionCount() != groups.PositionCount() ||
		seen.PositionCount() != groups.PositionCount() {
		return common.ShapeMismatch(
			"%s: partial state misaligned with groups", s.name)
	}
	for p := 0; p < groups.PositionCount(); p++ {
		group, err := groupAt(groups, p)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if group < 0 {
			continue
		}
		if !seen.Get(seen.FirstValueIndex(p)) {
			continue
		}
		next, err := s.add(s.acc.get(group), sums.Get(sums.FirstValueIndex(p)))
		if err != nil {
			return fmt.Errorf("%s: group %d: %w", s.name, group, err)
		}
		s.acc.set(group, next)
	}
	return nil
}

func (s *sumFunc[V, A]) EvaluateIntermediate(selected []int) ([]data.AnyBlock, error) {
	sums := make([]A, len(selected))
	seen := make([]bool, len(selected))
	for i, g := range selected {
		sums[i] = s.acc.get(g)
		seen[i] = s.acc.isSeen(g)
	}
	return []data.AnyBlock{data.NewBlock(sums...), data.NewBlock(seen...)}, nil
}

func (s *sumFunc[V, A]) EvaluateFinal(selected []int) (data.AnyBlock, error) {
	out := make([]A, len(selected))
	for i, g := range selected {
		out[i] = s.acc.get(g)
	}
	return data.NewBlock(out...), nil
}

// addExactInt64 is Math.addExact: the sum or an overflow error, never
// a silently wrapped value.
func addExactInt64(a, b int64) (int64, error) {
	sum := a + b
	if ((a ^ sum) & (b ^ sum)) < 0 {
		return 0, common.ArithmeticOverflow("%d + %d", a, b)
	}
	return sum, nil
}

// SumInts sums int32 values in an int64 accumulator.
func SumInts() GroupingAggregatorFunction {
	return &sumFunc[int32, int64]{
		name: "sum of ints",
		acc:  newArena[int64](0),
		lift: func(v int32) int64 { return int64(v) },
		add:  addExactInt64,
	}
}

// SumLongs sums int64 values. There is no wider integer accumulator,
// so overflow fails fast.
func SumLongs() GroupingAggregatorFunction {
	return &sumFunc[int64, int64]{
		name: "sum of longs",
		acc:  newArena[int64](0),
		lift: func(v int64) int64 { return v },
		add:  addExactInt64,
	}
}

func SumDoubles() GroupingAggregatorFunction {
	return &sumFunc[float64, float64]{
		name: "sum of doubles",
		acc:  newArena[float64](0),
		lift: func(v float64) float64 { return v },
		add: func(a, b float64) (float64, error) {
			return a + b, nil
		},
	}
}

func SumDecimals() GroupingAggregatorFunction {
	return &sumFunc[common.Decimal, common.Decimal]{
		name: "sum of decimals",
		acc:  newArena(common.Decimal{}),
		lift: func(v common.Decimal) common.Decimal { return v },
		add: func(a, b common.Decimal) (common.Decimal, error) {
			return a.AddExact(b)
		},
	}
}
