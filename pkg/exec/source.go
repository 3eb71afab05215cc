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

	"golang.org/x/exp/constraints"

	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

// PageSource replays a fixed sequence of pages once, one page per
// pull.
type PageSource struct {
	name   string
	pages  []*data.Page
	next   int
	closed bool
}

func NewPageSource(name string, pages ...*data.Page) *PageSource {
	return &PageSource{name: name, pages: pages}
}

func (src *PageSource) Describe() string {
	return src.name
}

func (src *PageSource) GetData(ctx context.Context) (*data.Page, OperatorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, InvalidOpResult, err
	}
	if src.closed || src.next >= len(src.pages) {
		return nil, Done, nil
	}
	page := src.pages[src.next]
	src.next++
	return page, HaveMoreOutput, nil
}

func (src *PageSource) Close() error {
	src.closed = true
	src.pages = nil
	return nil
}

// NewGroupValueSource shapes parallel (group ordinal, value) slices
// into two-channel pages of at most batch positions: channel 0 the
// groups column, channel 1 the values.
func NewGroupValueSource[V data.Value](
	name string,
	batch int,
	groups []int64,
	values []V,
) (*PageSource, error) {
	if len(groups) != len(values) {
		return nil, common.ShapeMismatch(
			"%d groups vs %d values", len(groups), len(values))
	}
	if batch <= 0 {
		batch = len(groups)
	}
	var pages []*data.Page
	for start := 0; start < len(groups); start += batch {
		end := min(start+batch, len(groups))
		page, err := data.NewPage(
			data.NewBlock(groups[start:end]...),
			data.NewBlock(values[start:end]...))
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return NewPageSource(name, pages...), nil
}

// Ramp produces n values start, start+step, ... for demo and test
// inputs.
func Ramp[T constraints.Integer | constraints.Float](n int, start, step T) []T {
	out := make([]T, n)
	val := start
	for i := 0; i < n; i++ {
		out[i] = val
		val += step
	}
	return out
}
