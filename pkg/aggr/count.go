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

// countFunc counts non-null values per group. It only looks at entry
// shape, so it works for any value type.
type countFunc struct {
	acc arena[int64]
}

func CountValues() GroupingAggregatorFunction {
	return &countFunc{acc: newArena[int64](0)}
}

func (c *countFunc) Describe() string {
	return "count of values"
}

func (c *countFunc) MaxGroup() int {
	return c.acc.maxGroup()
}

func (c *countFunc) AddRawInput(groups *data.LongBlock, values data.AnyBlock) error {
	if groups.PositionCount() != values.PositionCount() {
		return common.ShapeMismatch(
			"count: groups have %d positions, values %d",
			groups.PositionCount(), values.PositionCount())
	}
	for p := 0; p < groups.PositionCount(); p++ {
		group, err := groupAt(groups, p)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if group < 0 {
			continue
		}
		if values.IsNull(p) {
			continue
		}
		next, err := addExactInt64(c.acc.get(group), int64(values.ValueCount(p)))
		if err != nil {
			return fmt.Errorf("count: group %d: %w", group, err)
		}
		c.acc.set(group, next)
	}
	return nil
}

func (c *countFunc) AddIntermediateInput(groups *data.LongBlock, state []data.AnyBlock) error {
	if len(state) != 1 {
		return common.IllegalState(
			"count expects 1 intermediate block, got %d", len(state))
	}
	counts, ok := state[0].(*data.LongBlock)
	if !ok {
		return common.IllegalState(
			"count cannot combine %s partial state", state[0].Type())
	}
	if counts.PositionCount() != groups.PositionCount() {
		return common.ShapeMismatch("count: partial state misaligned with groups")
	}
	for p := 0; p < groups.PositionCount(); p++ {
		group, err := groupAt(groups, p)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if group < 0 {
			continue
		}
		cnt := counts.Get(counts.FirstValueIndex(p))
		if cnt == 0 {
			continue
		}
		next, err := addExactInt64(c.acc.get(group), cnt)
		if err != nil {
			return fmt.Errorf("count: group %d: %w", group, err)
		}
		c.acc.set(group, next)
	}
	return nil
}

func (c *countFunc) EvaluateIntermediate(selected []int) ([]data.AnyBlock, error) {
	counts := make([]int64, len(selected))
	for i, g := range selected {
		counts[i] = c.acc.get(g)
	}
	return []data.AnyBlock{data.NewBlock(counts...)}, nil
}

func (c *countFunc) EvaluateFinal(selected []int) (data.AnyBlock, error) {
	counts := make([]int64, len(selected))
	for i, g := range selected {
		counts[i] = c.acc.get(g)
	}
	return data.NewBlock(counts...), nil
}
