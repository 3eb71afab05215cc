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

func TestNewPageShapeChecks(t *testing.T) {
	_, err := NewPage()
	assert.True(t, errors.Is(err, common.ErrShapeMismatch))

	_, err = NewPage(NewBlock[int64](1, 2), NewBlock[int64](1))
	assert.True(t, errors.Is(err, common.ErrShapeMismatch))
}

func TestPageAccessors(t *testing.T) {
	groups := NewBlock[int64](0, 0, 1)
	values := NewBlock[int32](3, 4, 5)
	page, err := NewPage(groups, values)
	require.NoError(t, err)

	assert.Equal(t, 3, page.PositionCount())
	assert.Equal(t, 2, page.BlockCount())
	assert.True(t, groups.EqualAny(page.Block(0)))
	assert.True(t, values.EqualAny(page.Block(1)))
}

func TestPageAppendBlock(t *testing.T) {
	page, err := NewPage(NewBlock[int64](1, 2))
	require.NoError(t, err)

	wider, err := page.AppendBlock(NewBlock[float64](0.5, 1.5))
	require.NoError(t, err)
	assert.Equal(t, 2, wider.BlockCount())
	assert.Equal(t, 1, page.BlockCount())

	_, err = page.AppendBlock(NewBlock[float64](0.5))
	assert.True(t, errors.Is(err, common.ErrShapeMismatch))
}

func TestPageProject(t *testing.T) {
	page, err := NewPage(
		NewBlock[int64](1, 2),
		NewBlock[int32](3, 4),
		NewBlock("a", "b"))
	require.NoError(t, err)

	narrowed := page.Project(2, 0)
	assert.Equal(t, 2, narrowed.BlockCount())
	assert.True(t, NewBlock("a", "b").EqualAny(narrowed.Block(0)))
	assert.True(t, NewBlock[int64](1, 2).EqualAny(narrowed.Block(1)))
}

func TestPageFilterPositions(t *testing.T) {
	page, err := NewPage(
		NewBlock[int64](1, 2, 3),
		NewBlock[int32](10, 20, 30))
	require.NoError(t, err)

	view := page.FilterPositions(2, 0)
	assert.Equal(t, 2, view.PositionCount())
	assert.True(t, NewBlock[int64](3, 1).EqualAny(view.Block(0)))
	assert.True(t, NewBlock[int32](30, 10).EqualAny(view.Block(1)))
}

func TestPageClone(t *testing.T) {
	page, err := NewPage(NewBlock[int64](1, 2), NewBlock[float64](0.5, 1.5))
	require.NoError(t, err)

	copied := page.Clone()
	assert.Equal(t, page.PositionCount(), copied.PositionCount())
	assert.Equal(t, page.BlockCount(), copied.BlockCount())
	for ch := 0; ch < page.BlockCount(); ch++ {
		assert.True(t, page.Block(ch).EqualAny(copied.Block(ch)))
	}
}
