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

package aggr

import (
	"fmt"

	"github.com/daviszhen/vexec/pkg/common"
)

// Factory builds a fresh, private aggregator-function instance, one
// per pipeline partition.
type Factory func() GroupingAggregatorFunction

type funcKey struct {
	op  string
	typ common.DataType
}

var registry = map[funcKey]Factory{
	{"sum", common.INT32}:   SumInts,
	{"sum", common.INT64}:   SumLongs,
	{"sum", common.FLOAT64}: SumDoubles,
	{"sum", common.DECIMAL}: SumDecimals,
	{"min", common.INT32}:   MinInts,
	{"min", common.INT64}:   MinLongs,
	{"min", common.FLOAT64}: MinDoubles,
	{"max", common.INT32}:   MaxInts,
	{"max", common.INT64}:   MaxLongs,
	{"max", common.FLOAT64}: MaxDoubles,
}

// Lookup resolves an aggregate by name and input value type. count
// works for every type.
func Lookup(op string, typ common.DataType) (Factory, error) {
	if op == "count" {
		return CountValues, nil
	}
	if f, has := registry[funcKey{op, typ}]; has {
		return f, nil
	}
	return nil, fmt.Errorf("no aggregate %q over %s", op, typ)
}
