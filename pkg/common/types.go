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

import "fmt"

// DataType is the closed set of value types a Block/Vector can carry.
type DataType int

const (
	INVALID DataType = iota
	INT32
	INT64
	FLOAT64
	BOOL
	BYTES
	DECIMAL
)

var typeToStr = map[DataType]string{
	INVALID: "INVALID",
	INT32:   "INT32",
	INT64:   "INT64",
	FLOAT64: "FLOAT64",
	BOOL:    "BOOL",
	BYTES:   "BYTES",
	DECIMAL: "DECIMAL",
}

func (dt DataType) String() string {
	if s, has := typeToStr[dt]; has {
		return s
	}
	panic(fmt.Sprintf("usp data type %d", int(dt)))
}

// ValueName is the plural spelling used in aggregate descriptions,
// e.g. "sum of ints".
func (dt DataType) ValueName() string {
	switch dt {
	case INT32:
		return "ints"
	case INT64:
		return "longs"
	case FLOAT64:
		return "doubles"
	case BOOL:
		return "booleans"
	case BYTES:
		return "bytes"
	case DECIMAL:
		return "decimals"
	default:
		panic("usp")
	}
}

// WiderType returns the type a sum over dt accumulates in, when a
// strictly wider one exists.
func WiderType(dt DataType) (DataType, bool) {
	switch dt {
	case INT32:
		return INT64, true
	default:
		return INVALID, false
	}
}
