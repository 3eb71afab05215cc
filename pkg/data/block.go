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
	"slices"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/util"
)

type blockKind uint8

const (
	// one non-null value per position, backed by a Vector
	BLK_VECTOR blockKind = iota
	// values + per-position offset/count + validity mask
	BLK_ARRAY
	// single value logically repeated
	BLK_CONST
	// read-only position view over a base block
	BLK_FILTER
)

// AnyBlock is the type-erased face of Block[T], used where blocks of
// different value types travel together (Pages, operator channels).
type AnyBlock interface {
	Type() common.DataType
	PositionCount() int
	IsNull(position int) bool
	ValueCount(position int) int
	FirstValueIndex(position int) int
	TotalValueCount() int
	// GetAny reads a value by value-storage index, type-erased; meant
	// for rendering and diagnostics, not hot loops.
	GetAny(valueIndex int) any
	FilterAny(positions ...int) AnyBlock
	GetRowAny(position int) AnyBlock
	EqualAny(other AnyBlock) bool
	Hash() int32
}

// Block is a sequence of entries, one per position. An entry is absent
// (null), one value, or an ordered multi-value group. Blocks are
// immutable after construction.
//
// Invariant: for every position p the range
// [FirstValueIndex(p), FirstValueIndex(p)+ValueCount(p)) lies within
// the backing storage, and ranges of distinct positions do not overlap
// unless the block is a filtered view.
type Block[T Value] struct {
	kind blockKind

	// BLK_VECTOR
	vec *Vector[T]

	// BLK_ARRAY
	values     []T
	firstValue []int32
	counts     []int32
	nulls      util.Bitmap

	// BLK_CONST
	cval T

	// BLK_FILTER. base is never itself a filter view.
	base *Block[T]
	sel  []int

	positions int
}

// type aliases for the supported specializations
type (
	IntBlock     = Block[int32]
	LongBlock    = Block[int64]
	DoubleBlock  = Block[float64]
	BoolBlock    = Block[bool]
	BytesBlock   = Block[string]
	DecimalBlock = Block[common.Decimal]
)

// NewBlock builds a single-valued, non-null block over values.
func NewBlock[T Value](values ...T) *Block[T] {
	return NewVector(slices.Clone(values)).AsBlock()
}

func NewConstBlock[T Value](val T, positions int) *Block[T] {
	return &Block[T]{
		kind:      BLK_CONST,
		cval:      val,
		positions: positions,
	}
}

func (b *Block[T]) Type() common.DataType {
	return TypeOf[T]()
}

func (b *Block[T]) PositionCount() int {
	return b.positions
}

func (b *Block[T]) IsNull(position int) bool {
	switch b.kind {
	case BLK_VECTOR, BLK_CONST:
		return false
	case BLK_ARRAY:
		return !b.nulls.RowIsValid(uint64(position))
	case BLK_FILTER:
		return b.base.IsNull(b.sel[position])
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

func (b *Block[T]) ValueCount(position int) int {
	switch b.kind {
	case BLK_VECTOR, BLK_CONST:
		return 1
	case BLK_ARRAY:
		return int(b.counts[position])
	case BLK_FILTER:
		return b.base.ValueCount(b.sel[position])
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

// FirstValueIndex returns the index of the first value of position in
// the backing value storage. For filtered views the index is in the
// base block's storage.
func (b *Block[T]) FirstValueIndex(position int) int {
	switch b.kind {
	case BLK_VECTOR:
		return position
	case BLK_CONST:
		return 0
	case BLK_ARRAY:
		return int(b.firstValue[position])
	case BLK_FILTER:
		return b.base.FirstValueIndex(b.sel[position])
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

// Get reads the raw value at a value-storage index. Indices outside
// the ranges implied by FirstValueIndex/ValueCount are a caller bug.
func (b *Block[T]) Get(valueIndex int) T {
	switch b.kind {
	case BLK_VECTOR:
		return b.vec.Get(valueIndex)
	case BLK_CONST:
		return b.cval
	case BLK_ARRAY:
		return b.values[valueIndex]
	case BLK_FILTER:
		return b.base.Get(valueIndex)
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

func (b *Block[T]) TotalValueCount() int {
	total := 0
	for p := 0; p < b.positions; p++ {
		total += b.ValueCount(p)
	}
	return total
}

// AsVector succeeds only when every position holds exactly one
// non-null value. Backing values are reused, never copied.
func (b *Block[T]) AsVector() (*Vector[T], error) {
	for p := 0; p < b.positions; p++ {
		if b.IsNull(p) {
			return nil, common.ShapeMismatch("position %d is null", p)
		}
		if b.ValueCount(p) != 1 {
			return nil, common.ShapeMismatch("position %d holds %d values", p, b.ValueCount(p))
		}
	}
	switch b.kind {
	case BLK_VECTOR:
		return b.vec, nil
	case BLK_CONST:
		return NewConstVector(b.cval, b.positions), nil
	case BLK_ARRAY:
		dense := true
		for p := 0; p < b.positions; p++ {
			if int(b.firstValue[p]) != p {
				dense = false
				break
			}
		}
		if dense {
			return NewVector(b.values[:b.positions]), nil
		}
		sel := make([]int, b.positions)
		for p := range sel {
			sel[p] = int(b.firstValue[p])
		}
		return NewVector(b.values).Filter(sel...), nil
	case BLK_FILTER:
		sel := make([]int, b.positions)
		for p := range sel {
			sel[p] = b.FirstValueIndex(p)
		}
		return b.base.storageVector().Filter(sel...), nil
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

// storageVector exposes the raw value storage of a non-filter block as
// a vector addressed by value index.
func (b *Block[T]) storageVector() *Vector[T] {
	switch b.kind {
	case BLK_VECTOR:
		return b.vec
	case BLK_CONST:
		return NewConstVector(b.cval, 1)
	case BLK_ARRAY:
		return NewVector(b.values)
	default:
		panic(common.UnsupportedShape("block kind %d", b.kind))
	}
}

// Filter returns a view restricted to and reordered by positions.
// Filtering a filtered block flattens into one selection.
func (b *Block[T]) Filter(positions ...int) *Block[T] {
	if b.kind == BLK_CONST {
		return NewConstBlock(b.cval, len(positions))
	}
	base := b
	sel := slices.Clone(positions)
	if b.kind == BLK_FILTER {
		base = b.base
		for i, p := range positions {
			sel[i] = b.sel[p]
		}
	}
	return &Block[T]{
		kind:      BLK_FILTER,
		base:      base,
		sel:       sel,
		positions: len(sel),
	}
}

// GetRow returns the single-position sub-block at position.
func (b *Block[T]) GetRow(position int) *Block[T] {
	return b.Filter(position)
}

// Equal implements the cross-representation equality contract: equal
// position count and, per position, equal nullness, value count and
// pairwise-equal values in order. It deliberately goes through the
// generic accessors only, so every backing kind compares identically.
func (b *Block[T]) Equal(other *Block[T]) bool {
	if b.positions != other.positions {
		return false
	}
	for p := 0; p < b.positions; p++ {
		if b.IsNull(p) != other.IsNull(p) {
			return false
		}
		if b.IsNull(p) {
			continue
		}
		vc := b.ValueCount(p)
		if vc != other.ValueCount(p) {
			return false
		}
		bi := b.FirstValueIndex(p)
		oi := other.FirstValueIndex(p)
		for k := 0; k < vc; k++ {
			if b.Get(bi+k) != other.Get(oi+k) {
				return false
			}
		}
	}
	return true
}

// Hash is a left fold over positions: h = 31*h + contribution. A null
// entry contributes the fixed constant -1, a present entry contributes
// its value count and then each value. Equal blocks hash equal.
func (b *Block[T]) Hash() int32 {
	h := int32(1)
	for p := 0; p < b.positions; p++ {
		if b.IsNull(p) {
			h = 31*h - 1
			continue
		}
		vc := b.ValueCount(p)
		h = 31*h + int32(vc)
		fi := b.FirstValueIndex(p)
		for k := 0; k < vc; k++ {
			h = 31*h + hashValue(b.Get(fi+k))
		}
	}
	return h
}

func (b *Block[T]) GetAny(valueIndex int) any {
	return b.Get(valueIndex)
}

func (b *Block[T]) FilterAny(positions ...int) AnyBlock {
	return b.Filter(positions...)
}

func (b *Block[T]) GetRowAny(position int) AnyBlock {
	return b.GetRow(position)
}

func (b *Block[T]) EqualAny(other AnyBlock) bool {
	o, ok := other.(*Block[T])
	if !ok {
		return false
	}
	return b.Equal(o)
}
