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
	"github.com/RoaringBitmap/roaring"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// GroupingAggregatorFunction folds (group ordinal, value) pairs into
// per-group accumulator state. Group ordinals are dense non-negative
// integers assigned by an upstream grouping component. An instance is
// single-threaded; parallel partitions each run their own instance and
// meet only through AddIntermediateInput, whose merge operator is
// associative and commutative.
type GroupingAggregatorFunction interface {
	// Describe returns the plan-explain text, e.g. "sum of ints".
	Describe() string

	// AddRawInput folds values into the accumulators named by the
	// groups column. Positions whose group entry is null or
	// multi-valued are skipped, as are null value entries.
	// Multi-valued value entries fold every value, first value index
	// to last.
	AddRawInput(groups *data.LongBlock, values data.AnyBlock) error

	// AddIntermediateInput merges partial per-group state exported by
	// another instance of the same function.
	AddIntermediateInput(groups *data.LongBlock, state []data.AnyBlock) error

	// EvaluateIntermediate exports the partial state for the selected
	// group ordinals, in the order requested.
	EvaluateIntermediate(selected []int) ([]data.AnyBlock, error)

	// EvaluateFinal emits one value per selected group ordinal, in the
	// order requested. Groups never observed yield the identity value.
	EvaluateFinal(selected []int) (data.AnyBlock, error)

	// MaxGroup returns the largest group ordinal observed so far, -1
	// before any input.
	MaxGroup() int
}

// arena is the per-group accumulator storage: a dense array indexed by
// group ordinal, grown on demand, new slots defaulting to the identity
// element. Seen-ness is tracked apart from the values so an identity
// value folded in stays distinguishable from an untouched slot.
type arena[A any] struct {
	values   []A
	seen     *roaring.Bitmap
	identity A
}

func newArena[A any](identity A) arena[A] {
	return arena[A]{
		seen:     roaring.New(),
		identity: identity,
	}
}

func (a *arena[A]) get(group int) A {
	if group < len(a.values) {
		return a.values[group]
	}
	return a.identity
}

func (a *arena[A]) set(group int, val A) {
	for len(a.values) <= group {
		a.values = append(a.values, a.identity)
	}
	a.values[group] = val
	a.seen.Add(uint32(group))
}

func (a *arena[A]) isSeen(group int) bool {
	return group >= 0 && a.seen.Contains(uint32(group))
}

func (a *arena[A]) maxGroup() int {
	if a.seen.IsEmpty() {
		return -1
	}
	return int(a.seen.Maximum())
}

// forEachGroupValue drives the core fold: for every position whose
// group entry is a single non-null ordinal and whose value entry is
// present, it hands each value of the entry to fn in encounter order.
func forEachGroupValue[V data.Value](
	name string,
	groups *data.LongBlock,
	values data.AnyBlock,
	fn func(group int, val V) error,
) error {
	vb, ok := values.(*data.Block[V])
	if !ok {
		return common.UnsupportedShape(
			"%s cannot consume %s values", name, values.Type())
	}
	if groups.PositionCount() != vb.PositionCount() {
		return common.ShapeMismatch(
			"%s: groups have %d positions, values %d",
			name, groups.PositionCount(), vb.PositionCount())
	}
	for p := 0; p < groups.PositionCount(); p++ {
		if groups.IsNull(p) || groups.ValueCount(p) != 1 {
			continue
		}
		group := int(groups.Get(groups.FirstValueIndex(p)))
		if group < 0 {
			return common.ShapeMismatch(
				"%s: negative group ordinal %d at position %d", name, group, p)
		}
		if vb.IsNull(p) {
			continue
		}
		fi := vb.FirstValueIndex(p)
		vc := vb.ValueCount(p)
		for k := 0; k < vc; k++ {
			if err := fn(group, vb.Get(fi+k)); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupAt reads the single group ordinal at position p. Null or
// multi-valued entries come back as -1 and are skipped by callers; a
// negative ordinal is corrupt input and errors.
func groupAt(groups *data.LongBlock, p int) (int, error) {
	if groups.IsNull(p) || groups.ValueCount(p) != 1 {
		return -1, nil
	}
	group := int(groups.Get(groups.FirstValueIndex(p)))
	if group < 0 {
		return -1, common.ShapeMismatch(
			"negative group ordinal %d at position %d", group, p)
	}
	return group, nil
}

// TypeNameOf names a value type the way aggregate descriptions spell
// it, e.g. "ints".
func TypeNameOf[V data.Value]() string {
	return data.TypeOf[V]().ValueName()
}

func lessValue[V data.Value](a, b V) bool {
	switch x := any(a).(type) {
	case int32:
		return x < any(b).(int32)
	case int64:
		return x < any(b).(int64)
	case float64:
		return x < any(b).(float64)
	case string:
		return x < any(b).(string)
	case common.Decimal:
		return x.Cmp(any(b).(common.Decimal).Decimal) < 0
	default:
		panic(common.UnsupportedShape("no ordering for %s", data.TypeOf[V]()))
	}
}
