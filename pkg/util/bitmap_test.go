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

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmapEmptyMeansAllValid(t *testing.T) {
	bm := &Bitmap{}
	assert.True(t, bm.AllValid())
	assert.True(t, bm.RowIsValid(0))
	assert.True(t, bm.RowIsValid(1 << 20))
	assert.Equal(t, 5, bm.CountValid(5))
}

func TestBitmapSetInvalid(t *testing.T) {
	bm := &Bitmap{}
	bm.SetInvalid(3)
	assert.False(t, bm.AllValid())
	assert.False(t, bm.RowIsValid(3))
	assert.True(t, bm.RowIsValid(0))
	assert.True(t, bm.RowIsValid(4))
	assert.Equal(t, 7, bm.CountValid(8))

	bm.SetValid(3)
	assert.True(t, bm.RowIsValid(3))
}

func TestBitmapGrowsPastInitialAllocation(t *testing.T) {
	bm := &Bitmap{}
	bm.SetInvalid(0)
	ridx := uint64(DefaultVectorSize * 4)
	bm.SetInvalid(ridx)
	assert.False(t, bm.RowIsValid(0))
	assert.False(t, bm.RowIsValid(ridx))
	assert.True(t, bm.RowIsValid(ridx - 1))
}

func TestBitmapRowsBeyondAllocationAreValid(t *testing.T) {
	bm := &Bitmap{}
	bm.Init(8)
	bm.SetInvalid(2)
	assert.True(t, bm.RowIsValid(100))
}

func TestBitmapSetValidPastAllocation(t *testing.T) {
	bm := &Bitmap{}
	bm.Init(8)
	bm.SetInvalid(2)

	// beyond the allocation rows already read as valid, so this is a no-op
	bm.SetValid(100)
	assert.True(t, bm.RowIsValid(100))
	assert.False(t, bm.RowIsValid(2))

	// an uninitialized bitmap has nothing to set either
	empty := &Bitmap{}
	empty.SetValid(7)
	assert.True(t, empty.RowIsValid(7))
}

func TestBitmapResizeKeepsBits(t *testing.T) {
	bm := &Bitmap{}
	bm.Init(8)
	bm.SetInvalid(5)
	bm.Resize(8, 64)
	assert.False(t, bm.RowIsValid(5))
	assert.True(t, bm.RowIsValid(63))
}

func TestBitmapCopyFrom(t *testing.T) {
	src := &Bitmap{}
	src.SetInvalid(1)

	dst := &Bitmap{}
	dst.CopyFrom(src, 8)
	assert.False(t, dst.RowIsValid(1))
	assert.True(t, dst.RowIsValid(0))

	all := &Bitmap{}
	dst.CopyFrom(all, 8)
	assert.True(t, dst.AllValid())
}
