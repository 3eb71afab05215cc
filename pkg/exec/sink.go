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
	"fmt"

	"github.com/tidwall/btree"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// GroupRow is one result row, the values in page channel order with
// the group channel removed. A null entry is a nil value, a
// multi-valued entry a []any.
type GroupRow struct {
	Group  int64
	Values []any
}

// OrderedSink absorbs result pages and serves the rows sorted by group
// ordinal, independent of the order partitions delivered them in.
type OrderedSink struct {
	groupChannel int
	rows         btree.Map[int64, []any]
}

func NewOrderedSink(groupChannel int) *OrderedSink {
	return &OrderedSink{groupChannel: groupChannel}
}

func (s *OrderedSink) Describe() string {
	return fmt.Sprintf("sink[ordered by channel %d]", s.groupChannel)
}

func (s *OrderedSink) Execute(ctx context.Context, input *data.Page) ([]*data.Page, error) {
	if err := s.Absorb(input); err != nil {
		return nil, err
	}
	return nil, nil
}

// Absorb records every row of the page under its group ordinal. A
// later page with the same ordinal replaces the earlier row.
func (s *OrderedSink) Absorb(page *data.Page) error {
	groups, ok := page.Block(s.groupChannel).(*data.LongBlock)
	if !ok {
		return common.UnsupportedShape(
			"group channel %d is %s, want %s",
			s.groupChannel, page.Block(s.groupChannel).Type(), common.INT64)
	}
	for p := 0; p < page.PositionCount(); p++ {
		if groups.IsNull(p) || groups.ValueCount(p) != 1 {
			return common.ShapeMismatch(
				"sink wants a single group ordinal at position %d", p)
		}
		group := groups.Get(groups.FirstValueIndex(p))
		values := make([]any, 0, page.BlockCount()-1)
		for ch := 0; ch < page.BlockCount(); ch++ {
			if ch == s.groupChannel {
				continue
			}
			values = append(values, entryValue(page.Block(ch), p))
		}
		s.rows.Set(group, values)
	}
	return nil
}

func entryValue(block data.AnyBlock, position int) any {
	if block.IsNull(position) {
		return nil
	}
	fi := block.FirstValueIndex(position)
	vc := block.ValueCount(position)
	if vc == 1 {
		return block.GetAny(fi)
	}
	multi := make([]any, 0, vc)
	for k := 0; k < vc; k++ {
		multi = append(multi, block.GetAny(fi+k))
	}
	return multi
}

func (s *OrderedSink) Finish(ctx context.Context) ([]*data.Page, error) {
	return nil, nil
}

func (s *OrderedSink) Close() error {
	return nil
}

func (s *OrderedSink) Len() int {
	return s.rows.Len()
}

// Rows returns the absorbed rows in ascending group order.
func (s *OrderedSink) Rows() []GroupRow {
	out := make([]GroupRow, 0, s.rows.Len())
	s.rows.Scan(func(group int64, values []any) bool {
		out = append(out, GroupRow{Group: group, Values: values})
		return true
	})
	return out
}
