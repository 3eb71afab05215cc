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

	"github.com/daviszhen/vexec/pkg/data"
)

// FilterOperator keeps the positions satisfying pred. The output pages
// hold filtered views over the input blocks, no values are copied.
type FilterOperator struct {
	name string
	pred func(page *data.Page, position int) bool
}

func NewFilter(name string, pred func(page *data.Page, position int) bool) *FilterOperator {
	return &FilterOperator{name: name, pred: pred}
}

func (f *FilterOperator) Describe() string {
	return fmt.Sprintf("filter[%s]", f.name)
}

func (f *FilterOperator) Execute(ctx context.Context, input *data.Page) ([]*data.Page, error) {
	var kept []int
	for p := 0; p < input.PositionCount(); p++ {
		if f.pred(input, p) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	if len(kept) == input.PositionCount() {
		return []*data.Page{input}, nil
	}
	return []*data.Page{input.FilterPositions(kept...)}, nil
}

func (f *FilterOperator) Finish(ctx context.Context) ([]*data.Page, error) {
	return nil, nil
}

func (f *FilterOperator) Close() error {
	return nil
}

// ProjectOperator narrows every page to the given channels.
type ProjectOperator struct {
	channels []int
}

func NewProject(channels ...int) *ProjectOperator {
	return &ProjectOperator{channels: channels}
}

func (pr *ProjectOperator) Describe() string {
	return fmt.Sprintf("project%v", pr.channels)
}

func (pr *ProjectOperator) Execute(ctx context.Context, input *data.Page) ([]*data.Page, error) {
	return []*data.Page{input.Project(pr.channels...)}, nil
}

func (pr *ProjectOperator) Finish(ctx context.Context) ([]*data.Page, error) {
	return nil, nil
}

func (pr *ProjectOperator) Close() error {
	return nil
}
