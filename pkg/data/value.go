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
	"math"

	"github.com/daviszhen/vexec/pkg/common"
)

// Value is the closed set of primitive types the Block/Vector family is
// instantiated over. Extending it means extending TypeOf and hashValue
// as well, both panic on a missing case.
type Value interface {
	int32 | int64 | float64 | bool | string | common.Decimal
}

func TypeOf[T Value]() common.DataType {
	var z T
	switch any(z).(type) {
	case int32:
		return common.INT32
	case int64:
		return common.INT64
	case float64:
		return common.FLOAT64
	case bool:
		return common.BOOL
	case string:
		return common.BYTES
	case common.Decimal:
		return common.DECIMAL
	default:
		panic("usp value type")
	}
}

// hashValue is the per-value contribution to the 31-fold hash. It must
// stay in sync across every backing representation so that equal blocks
// hash equal.
func hashValue[T Value](v T) int32 {
	switch x := any(v).(type) {
	case int32:
		return x
	case int64:
		return int32(uint64(x) ^ uint64(x)>>32)
	case float64:
		b := math.Float64bits(x)
		return int32(b ^ b>>32)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		h := int32(0)
		for i := 0; i < len(x); i++ {
			h = 31*h + int32(x[i])
		}
		return h
	case common.Decimal:
		h := int32(0)
		s := x.String()
		for i := 0; i < len(s); i++ {
			h = 31*h + int32(s[i])
		}
		return h
	default:
		panic("usp value type")
	}
}
