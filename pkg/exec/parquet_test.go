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

package exec

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/daviszhen/vexec/pkg/aggr"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

type parquetTestRow struct {
	Group int64  `parquet:"name=group, type=INT64"`
	Value int64  `parquet:"name=value, type=INT64"`
	Opt   *int64 `parquet:"name=opt, type=INT64, repetitiontype=OPTIONAL"`
	Small int32  `parquet:"name=small, type=INT32"`
}

func writeParquetFile(t *testing.T, rows []parquetTestRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.parquet")
	fw, err := pqLocal.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := pqWriter.NewParquetWriter(fw, new(parquetTestRow), 1)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, pw.Write(row))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
	return path
}

func TestParquetSourceRequiredAndOptionalColumns(t *testing.T) {
	opt := int64(42)
	path := writeParquetFile(t, []parquetTestRow{
		{Group: 0, Value: 3, Opt: &opt, Small: 100},
		{Group: 0, Value: 4, Small: 200},
		{Group: 1, Value: 5, Small: 300},
	})

	src, err := NewParquetSource(path, 10,
		ParquetColumn{Index: 0, Type: common.INT64},
		ParquetColumn{Index: 1, Type: common.INT64},
		ParquetColumn{Index: 2, Type: common.INT64},
		ParquetColumn{Index: 3, Type: common.INT32})
	require.NoError(t, err)
	defer src.Close()

	page, res, err := src.GetData(context.Background())
	require.NoError(t, err)
	require.Equal(t, HaveMoreOutput, res)
	require.Equal(t, 3, page.PositionCount())

	// required columns decode every cell as a value, never a null
	assert.True(t, data.NewBlock[int64](0, 0, 1).EqualAny(page.Block(0)))
	assert.True(t, data.NewBlock[int64](3, 4, 5).EqualAny(page.Block(1)))
	assert.True(t, data.NewBlock[int32](100, 200, 300).EqualAny(page.Block(3)))

	// the optional column is null exactly where the writer saw nil
	optBlock, ok := page.Block(2).(*data.LongBlock)
	require.True(t, ok)
	assert.False(t, optBlock.IsNull(0))
	assert.Equal(t, int64(42), optBlock.Get(optBlock.FirstValueIndex(0)))
	assert.True(t, optBlock.IsNull(1))
	assert.True(t, optBlock.IsNull(2))

	_, res, err = src.GetData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, res)
}

func TestParquetSourceWidensInt32(t *testing.T) {
	path := writeParquetFile(t, []parquetTestRow{
		{Group: 0, Value: 1, Small: 7},
		{Group: 1, Value: 2, Small: 8},
	})

	src, err := NewParquetSource(path, 10,
		ParquetColumn{Index: 3, Type: common.INT64})
	require.NoError(t, err)
	defer src.Close()

	page, _, err := src.GetData(context.Background())
	require.NoError(t, err)
	assert.True(t, data.NewBlock[int64](7, 8).EqualAny(page.Block(0)))
}

func TestParquetSourceBatching(t *testing.T) {
	var rows []parquetTestRow
	for i := 0; i < 5; i++ {
		rows = append(rows, parquetTestRow{Group: int64(i % 2), Value: int64(i)})
	}
	path := writeParquetFile(t, rows)

	src, err := NewParquetSource(path, 2,
		ParquetColumn{Index: 0, Type: common.INT64},
		ParquetColumn{Index: 1, Type: common.INT64})
	require.NoError(t, err)
	defer src.Close()

	counts := []int{}
	for {
		page, res, err := src.GetData(context.Background())
		require.NoError(t, err)
		if res == Done {
			break
		}
		counts = append(counts, page.PositionCount())
	}
	assert.Equal(t, []int{2, 2, 1}, counts)
}

func TestParquetSourceAggregation(t *testing.T) {
	path := writeParquetFile(t, []parquetTestRow{
		{Group: 0, Value: 3},
		{Group: 0, Value: 4},
		{Group: 1, Value: 5},
		{Group: 1, Value: 6},
		{Group: 0, Value: 2},
	})

	src, err := NewParquetSource(path, 2,
		ParquetColumn{Index: 0, Type: common.INT64},
		ParquetColumn{Index: 1, Type: common.INT64})
	require.NoError(t, err)

	out, err := NewDriver(src,
		NewGroupingAggregation(SingleMode, aggr.SumLongs(), 0, 1),
	).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, data.NewBlock[int64](0, 1).EqualAny(out[0].Block(0)))
	assert.True(t, data.NewBlock[int64](9, 11).EqualAny(out[0].Block(1)))
}

func TestParquetSourceUnknownColumn(t *testing.T) {
	path := writeParquetFile(t, []parquetTestRow{{Group: 0, Value: 1}})

	_, err := NewParquetSource(path, 10,
		ParquetColumn{Index: 9, Type: common.INT64})
	assert.True(t, errors.Is(err, common.ErrShapeMismatch))
}
