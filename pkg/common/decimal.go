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
	decimal2 "github.com/govalues/decimal"
)

type Decimal struct {
	decimal2.Decimal
}

func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal2.Parse(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

func DecimalFromInt64(v int64) (Decimal, error) {
	d, err := decimal2.New(v, 0)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

func (dec Decimal) Equal(o Decimal) bool {
	return dec.Decimal.Cmp(o.Decimal) == 0
}

func (dec Decimal) String() string {
	return dec.Decimal.String()
}

// AddExact fails instead of losing digits when the coefficient
// outgrows the representable range.
func (dec Decimal) AddExact(o Decimal) (Decimal, error) {
	res, err := dec.Decimal.Add(o.Decimal)
	if err != nil {
		return Decimal{}, ArithmeticOverflow("decimal add: %v", err)
	}
	return Decimal{res}, nil
}
