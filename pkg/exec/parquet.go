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
	"fmt"
	"io"

	pqSource "github.com/xitongsys/parquet-go-source/local"
	pqCommon "github.com/xitongsys/parquet-go/common"
	pqReader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
	"github.com/daviszhen/vexec/pkg/util"
)

// ParquetColumn names one column to scan: its leaf index in the
// parquet schema and the block type to decode it into.
type ParquetColumn struct {
	Index int64
	Type  common.DataType
}

// ParquetSource reads the named columns of a local parquet file batch
// by batch, one page per GetData call. Null cells become null block
// entries.
type ParquetSource struct {
	path      string
	columns   []ParquetColumn
	maxDLs    []int32
	batch     int
	file      source.ParquetFile
	reader    *pqReader.ParquetReader
	exhausted bool
}

func NewParquetSource(path string, batch int, columns ...ParquetColumn) (*ParquetSource, error) {
	if !util.FileIsValid(path) {
		return nil, fmt.Errorf("no parquet file %s", path)
	}
	if batch <= 0 {
		batch = util.DefaultVectorSize
	}
	if len(columns) == 0 {
		return nil, common.IllegalState("parquet source wants at least one column")
	}
	file, err := pqSource.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	reader, err := pqReader.NewParquetColumnReader(file, 1)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	// only an optional column can hold nulls; a cell of one is null iff
	// its definition level stays below the column's maximum
	maxDLs := make([]int32, len(columns))
	for i, col := range columns {
		if col.Index < 0 || col.Index >= int64(len(reader.SchemaHandler.ValueColumns)) {
			reader.ReadStop()
			_ = file.Close()
			return nil, common.ShapeMismatch(
				"parquet file %s has no column %d", path, col.Index)
		}
		pathStr := reader.SchemaHandler.ValueColumns[col.Index]
		maxDL, err := reader.SchemaHandler.MaxDefinitionLevel(pqCommon.StrToPath(pathStr))
		if err != nil {
			reader.ReadStop()
			_ = file.Close()
			return nil, err
		}
		maxDLs[i] = maxDL
	}
	return &ParquetSource{
		path:    path,
		columns: columns,
		maxDLs:  maxDLs,
		batch:   batch,
		file:    file,
		reader:  reader,
	}, nil
}

func (ps *ParquetSource) Describe() string {
	return fmt.Sprintf("parquet[%s]", ps.path)
}

func (ps *ParquetSource) GetData(ctx context.Context) (*data.Page, OperatorResult, error) {
	if ps.exhausted {
		return nil, Done, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, InvalidOpResult, err
	}
	rowCount := -1
	blocks := make([]data.AnyBlock, 0, len(ps.columns))
	for i, col := range ps.columns {
		values, _, dls, err := ps.reader.ReadColumnByIndex(col.Index, int64(ps.batch))
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, InvalidOpResult, err
		}
		if rowCount < 0 {
			rowCount = len(values)
		} else if len(values) != rowCount {
			return nil, InvalidOpResult, common.ShapeMismatch(
				"column %d read %d rows, previous columns %d",
				col.Index, len(values), rowCount)
		}
		block, err := decodeColumn(col, values, dls, ps.maxDLs[i])
		if err != nil {
			return nil, InvalidOpResult, err
		}
		blocks = append(blocks, block)
	}
	if rowCount <= 0 {
		ps.exhausted = true
		return nil, Done, nil
	}
	page, err := data.NewPage(blocks...)
	if err != nil {
		return nil, InvalidOpResult, err
	}
	return page, HaveMoreOutput, nil
}

func decodeColumn(col ParquetColumn, values []any, dls []int32, maxDL int32) (data.AnyBlock, error) {
	// a required column (maxDL 0) never holds nulls even though all of
	// its definition levels read back as 0
	null := func(i int) bool {
		if values[i] == nil {
			return true
		}
		return maxDL > 0 && i < len(dls) && dls[i] < maxDL
	}
	switch col.Type {
	case common.INT32:
		return decodeValues[int32](col, values, null)
	case common.INT64:
		return decodeValues[int64](col, values, null)
	case common.FLOAT64:
		return decodeValues[float64](col, values, null)
	case common.BOOL:
		return decodeValues[bool](col, values, null)
	case common.BYTES:
		return decodeValues[string](col, values, null)
	default:
		return nil, common.UnsupportedShape(
			"cannot decode parquet column %d as %s", col.Index, col.Type)
	}
}

func decodeValues[T data.Value](col ParquetColumn, values []any, null func(int) bool) (data.AnyBlock, error) {
	builder := data.NewBuilder[T](len(values))
	for i, raw := range values {
		if null(i) {
			builder.AppendNull()
			continue
		}
		val, err := parquetCell[T](col, raw)
		if err != nil {
			return nil, err
		}
		builder.AppendValue(val)
	}
	return builder.Build()
}

func parquetCell[T data.Value](col ParquetColumn, raw any) (T, error) {
	var zero T
	// int32 parquet cells widen into int64 columns.
	if _, wantLong := any(zero).(int64); wantLong {
		if narrow, ok := raw.(int32); ok {
			raw = int64(narrow)
		}
	}
	val, ok := raw.(T)
	if !ok {
		return zero, common.UnsupportedShape(
			"parquet column %d holds %T, want %s", col.Index, raw, col.Type)
	}
	return val, nil
}

func (ps *ParquetSource) Close() error {
	if ps.reader != nil {
		ps.reader.ReadStop()
		ps.reader = nil
	}
	if ps.file != nil {
		err := ps.file.Close()
		ps.file = nil
		return err
	}
	return nil
}
