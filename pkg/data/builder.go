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

package data

import (
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

// Builder is the append-only constructor of a Block. Single writer,
// single use: Build converts to an immutable Block exactly once.
type Builder[T Value] struct {
	values     []T
	firstValue []int32
	counts     []int32
	nulls      util.Bitmap

	positions  int
	inEntry    bool
	entryStart int
	hasNull    bool
	hasMulti   bool
	built      bool

	guard util.OwnerGuard
}

func NewBuilder[T Value](estimatedPositions int) *Builder[T] {
	return &Builder[T]{
		values:     make([]T, 0, estimatedPositions),
		firstValue: make([]int32, 0, estimatedPositions),
		counts:     make([]int32, 0, estimatedPositions),
	}
}

func (b *Builder[T]) checkWritable() {
	b.guard.Check()
	if b.built {
		panic(common.IllegalState("builder already built"))
	}
}

// AppendValue adds one value. Outside an entry it closes a
// single-value position; inside one it extends the open group.
func (b *Builder[T]) AppendValue(val T) *Builder[T] {
	b.checkWritable()
	if !b.inEntry {
		b.firstValue = append(b.firstValue, int32(len(b.values)))
		b.counts = append(b.counts, 1)
		b.positions++
	}
	b.values = append(b.values, val)
	return b
}

func (b *Builder[T]) AppendNull() *Builder[T] {
	b.checkWritable()
	util.AssertFunc(!b.inEntry)
	b.firstValue = append(b.firstValue, int32(len(b.values)))
	b.counts = append(b.counts, 0)
	b.positions++
	b.nulls.SetInvalid(uint64(b.positions - 1))
	b.hasNull = true
	return b
}

// BeginPositionEntry opens a multi-value group; EndPositionEntry
// closes it. An empty group becomes a null entry.
func (b *Builder[T]) BeginPositionEntry() *Builder[T] {
	b.checkWritable()
	util.AssertFunc(!b.inEntry)
	b.inEntry = true
	b.entryStart = len(b.values)
	b.firstValue = append(b.firstValue, int32(b.entryStart))
	b.counts = append(b.counts, 0)
	b.positions++
	return b
}

func (b *Builder[T]) EndPositionEntry() *Builder[T] {
	b.checkWritable()
	util.AssertFunc(b.inEntry)
	b.inEntry = false
	cnt := len(b.values) - b.entryStart
	b.counts[b.positions-1] = int32(cnt)
	switch {
	case cnt == 0:
		b.nulls.SetInvalid(uint64(b.positions - 1))
		b.hasNull = true
	case cnt > 1:
		b.hasMulti = true
	}
	return b
}

// Build freezes the appended entries into a Block. Building twice is
// an error. A block with only single non-null values comes out
// vector-backed.
func (b *Builder[T]) Build() (*Block[T], error) {
	if b.built {
		return nil, common.IllegalState("builder already built")
	}
	if b.inEntry {
		return nil, common.IllegalState("unclosed position entry")
	}
	b.built = true
	b.guard.Release()
	if !b.hasNull && !b.hasMulti {
		return NewVector(b.values).AsBlock(), nil
	}
	return &Block[T]{
		kind:       BLK_ARRAY,
		values:     b.values,
		firstValue: b.firstValue,
		counts:     b.counts,
		nulls:      b.nulls,
		positions:  b.positions,
	}, nil
}
