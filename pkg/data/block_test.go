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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vexec/pkg/common"
)

func TestBuilderSingleValued(t *testing.T) {
	block, err := NewBuilder[int64](4).
		AppendValue(1).
		AppendValue(2).
		AppendValue(3).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, block.PositionCount())
	assert.Equal(t, 3, block.TotalValueCount())
	for p := 0; p < 3; p++ {
		assert.False(t, block.IsNull(p))
		assert.Equal(t, 1, block.ValueCount(p))
		assert.Equal(t, int64(p+1), block.Get(block.FirstValueIndex(p)))
	}

	vec, err := block.AsVector()
	require.NoError(t, err)
	assert.Equal(t, 3, vec.Len())
	assert.Equal(t, int64(2), vec.Get(1))
}

func TestBuilderNullsAndMultiValue(t *testing.T) {
	block, err := NewBuilder[int32](4).
		AppendValue(7).
		AppendNull().
		BeginPositionEntry().
		AppendValue(1).
		AppendValue(2).
		AppendValue(3).
		EndPositionEntry().
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, block.PositionCount())

	assert.False(t, block.IsNull(0))
	assert.Equal(t, 1, block.ValueCount(0))
	assert.Equal(t, int32(7), block.Get(block.FirstValueIndex(0)))

	assert.True(t, block.IsNull(1))
	assert.Equal(t, 0, block.ValueCount(1))

	assert.False(t, block.IsNull(2))
	assert.Equal(t, 3, block.ValueCount(2))
	fi := block.FirstValueIndex(2)
	assert.Equal(t, int32(1), block.Get(fi))
	assert.Equal(t, int32(2), block.Get(fi+1))
	assert.Equal(t, int32(3), block.Get(fi+2))
	assert.Equal(t, 4, block.TotalValueCount())

	_, err = block.AsVector()
	assert.True(t, errors.Is(err, common.ErrShapeMismatch))
}

func TestBuilderEmptyEntryIsNull(t *testing.T) {
	block, err := NewBuilder[int64](1).
		BeginPositionEntry().
		EndPositionEntry().
		Build()
	require.NoError(t, err)
	assert.Equal(t, 1, block.PositionCount())
	assert.True(t, block.IsNull(0))
}

func TestBuilderBuildTwice(t *testing.T) {
	builder := NewBuilder[int64](1).AppendValue(1)
	_, err := builder.Build()
	require.NoError(t, err)
	_, err = builder.Build()
	assert.True(t, errors.Is(err, common.ErrIllegalState))
}

func TestBuilderUnclosedEntry(t *testing.T) {
	builder := NewBuilder[int64](1).BeginPositionEntry().AppendValue(1)
	_, err := builder.Build()
	assert.True(t, errors.Is(err, common.ErrIllegalState))
}

func TestEqualityAcrossRepresentations(t *testing.T) {
	plain := NewBlock[int64](5, 5, 5)
	constant := NewConstBlock[int64](5, 3)
	built, err := NewBuilder[int64](3).
		AppendValue(5).
		AppendValue(5).
		AppendValue(5).
		Build()
	require.NoError(t, err)
	filtered := NewBlock[int64](9, 5, 5, 9, 5).Filter(1, 2, 4)

	blocks := []*LongBlock{plain, constant, built, filtered}
	for _, a := range blocks {
		for _, b := range blocks {
			assert.True(t, a.Equal(b))
			assert.Equal(t, a.Hash(), b.Hash())
		}
	}
}

func TestEqualityNullsAndCounts(t *testing.T) {
	withNull, err := NewBuilder[int64](2).
		AppendValue(1).
		AppendNull().
		Build()
	require.NoError(t, err)
	noNull := NewBlock[int64](1, 2)
	assert.False(t, withNull.Equal(noNull))
	assert.False(t, noNull.Equal(withNull))

	otherNull, err := NewBuilder[int64](2).
		AppendValue(1).
		AppendNull().
		Build()
	require.NoError(t, err)
	assert.True(t, withNull.Equal(otherNull))
	assert.Equal(t, withNull.Hash(), otherNull.Hash())

	multi, err := NewBuilder[int64](1).
		BeginPositionEntry().
		AppendValue(1).
		AppendValue(2).
		EndPositionEntry().
		Build()
	require.NoError(t, err)
	single := NewBlock[int64](1)
	assert.False(t, multi.Equal(single))
}

func TestFilterComposition(t *testing.T) {
	block := NewBlock[int64](10, 20, 30, 40, 50)
	once := block.Filter(4, 2, 0)
	twice := once.Filter(2, 0)

	direct := block.Filter(0, 4)
	assert.True(t, twice.Equal(direct))
	assert.Equal(t, int64(10), twice.Get(twice.FirstValueIndex(0)))
	assert.Equal(t, int64(50), twice.Get(twice.FirstValueIndex(1)))
}

func TestFilterKeepsMultiValueEntries(t *testing.T) {
	block, err := NewBuilder[int64](3).
		AppendValue(1).
		BeginPositionEntry().
		AppendValue(2).
		AppendValue(3).
		EndPositionEntry().
		AppendNull().
		Build()
	require.NoError(t, err)

	view := block.Filter(2, 1)
	assert.Equal(t, 2, view.PositionCount())
	assert.True(t, view.IsNull(0))
	assert.Equal(t, 2, view.ValueCount(1))
	fi := view.FirstValueIndex(1)
	assert.Equal(t, int64(2), view.Get(fi))
	assert.Equal(t, int64(3), view.Get(fi+1))
}

func TestConstBlockFilter(t *testing.T) {
	block := NewConstBlock[int32](9, 5)
	view := block.Filter(0, 4)
	assert.Equal(t, 2, view.PositionCount())
	assert.True(t, view.Equal(NewConstBlock[int32](9, 2)))
}

func TestGetRow(t *testing.T) {
	block := NewBlock[float64](1.5, 2.5, 3.5)
	row := block.GetRow(1)
	assert.Equal(t, 1, row.PositionCount())
	assert.True(t, row.Equal(NewBlock[float64](2.5)))
}

func TestHashDistinguishesNullFromValue(t *testing.T) {
	withNull, err := NewBuilder[int64](1).AppendNull().Build()
	require.NoError(t, err)
	withValue := NewBlock[int64](0)
	assert.NotEqual(t, withNull.Hash(), withValue.Hash())
}

func TestEqualAnyRejectsOtherType(t *testing.T) {
	longs := NewBlock[int64](1)
	ints := NewBlock[int32](1)
	assert.False(t, longs.EqualAny(ints))
}

func TestVectorFilterComposes(t *testing.T) {
	vec := NewVector([]int64{10, 20, 30, 40})
	view := vec.Filter(3, 1).Filter(1)
	assert.Equal(t, 1, view.Len())
	assert.Equal(t, int64(20), view.Get(0))

	cvec := NewConstVector[int64](7, 4).Filter(0, 2)
	assert.True(t, cvec.IsConst())
	assert.Equal(t, 2, cvec.Len())
	assert.Equal(t, int64(7), cvec.Get(1))
}

func TestBlockTypes(t *testing.T) {
	assert.Equal(t, common.INT32, NewBlock[int32](1).Type())
	assert.Equal(t, common.INT64, NewBlock[int64](1).Type())
	assert.Equal(t, common.FLOAT64, NewBlock[float64](1).Type())
	assert.Equal(t, common.BOOL, NewBlock(true).Type())
	assert.Equal(t, common.BYTES, NewBlock("a").Type())
}
