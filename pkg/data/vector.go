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
)

type vecKind uint8

const (
	VEC_FLAT vecKind = iota
	VEC_CONST
	VEC_FILTER
)

// Vector is an immutable fixed-length array with exactly one non-null
// value per position. Sharing across Blocks/Pages is by reference; the
// backing storage is never mutated after construction.
type Vector[T Value] struct {
	kind   vecKind
	values []T
	cval   T
	// filter view. base is always flat or constant; filtering a
	// filtered vector flattens the selection instead of nesting.
	base   *Vector[T]
	sel    []int
	length int
}

func NewVector[T Value](values []T) *Vector[T] {
	return &Vector[T]{
		kind:   VEC_FLAT,
		values: values,
		length: len(values),
	}
}

func NewConstVector[T Value](val T, positions int) *Vector[T] {
	return &Vector[T]{
		kind:   VEC_CONST,
		cval:   val,
		length: positions,
	}
}

func (vec *Vector[T]) Type() common.DataType {
	return TypeOf[T]()
}

func (vec *Vector[T]) Len() int {
	return vec.length
}

func (vec *Vector[T]) IsConst() bool {
	return vec.kind == VEC_CONST
}

func (vec *Vector[T]) Get(idx int) T {
	switch vec.kind {
	case VEC_FLAT:
		return vec.values[idx]
	case VEC_CONST:
		return vec.cval
	case VEC_FILTER:
		return vec.base.Get(vec.sel[idx])
	default:
		panic(common.UnsupportedShape("vector kind %d", vec.kind))
	}
}

// Filter returns a view restricted to and reordered by positions.
// Positions may repeat. Backing values are never copied.
func (vec *Vector[T]) Filter(positions ...int) *Vector[T] {
	switch vec.kind {
	case VEC_CONST:
		return NewConstVector(vec.cval, len(positions))
	case VEC_FILTER:
		flat := make([]int, len(positions))
		for i, p := range positions {
			flat[i] = vec.sel[p]
		}
		return &Vector[T]{
			kind:   VEC_FILTER,
			base:   vec.base,
			sel:    flat,
			length: len(positions),
		}
	case VEC_FLAT:
		return &Vector[T]{
			kind:   VEC_FILTER,
			base:   vec,
			sel:    slices.Clone(positions),
			length: len(positions),
		}
	default:
		panic(common.UnsupportedShape("vector kind %d", vec.kind))
	}
}

func (vec *Vector[T]) AsBlock() *Block[T] {
	return &Block[T]{
		kind:      BLK_VECTOR,
		vec:       vec,
		positions: vec.length,
	}
}

func (vec *Vector[T]) Equal(other *Vector[T]) bool {
	if vec.length != other.length {
		return false
	}
	for i := 0; i < vec.length; i++ {
		if vec.Get(i) != other.Get(i) {
			return false
		}
	}
	return true
}

func (vec *Vector[T]) Hash() int32 {
	return vec.AsBlock().Hash()
}
