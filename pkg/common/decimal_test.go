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

package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalAddExact(t *testing.T) {
	a, err := ParseDecimal("1.25")
	require.NoError(t, err)
	b, err := DecimalFromInt64(2)
	require.NoError(t, err)

	sum, err := a.AddExact(b)
	require.NoError(t, err)
	want, err := ParseDecimal("3.25")
	require.NoError(t, err)
	assert.True(t, sum.Equal(want))
	assert.Equal(t, "3.25", sum.String())
}

func TestDecimalEqualIgnoresScale(t *testing.T) {
	a, err := ParseDecimal("1.50")
	require.NoError(t, err)
	b, err := ParseDecimal("1.5")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestWiderType(t *testing.T) {
	wide, has := WiderType(INT32)
	assert.True(t, has)
	assert.Equal(t, INT64, wide)

	_, has = WiderType(INT64)
	assert.False(t, has)
}

func TestErrorWrapping(t *testing.T) {
	err := ShapeMismatch("block %d", 3)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "block 3")
}
