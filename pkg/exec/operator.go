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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daviszhen/vexec/pkg/data"
	"github.com/daviszhen/vexec/pkg/util"
)

type OperatorResult int

const (
	InvalidOpResult OperatorResult = iota
	NeedMoreInput
	HaveMoreOutput
	Done
)

// SourceOperator produces a finite lazy sequence of Pages. An instance
// serves one query execution and is not restartable; the consumer may
// stop pulling early, Close still releases everything.
type SourceOperator interface {
	Describe() string
	GetData(ctx context.Context) (*data.Page, OperatorResult, error)
	Close() error
}

// Operator consumes one Page and synchronously produces zero or more.
// Finish flushes whatever the operator withheld (aggregations emit
// their result here); it is called once, after the last Execute.
type Operator interface {
	Describe() string
	Execute(ctx context.Context, input *data.Page) ([]*data.Page, error)
	Finish(ctx context.Context) ([]*data.Page, error)
	Close() error
}

// Driver owns one pipeline instance: a source and a chain of
// operators, pulled single-threaded. Panics inside a stage become
// structured errors naming the stage.
type Driver struct {
	id     uuid.UUID
	source SourceOperator
	ops    []Operator
}

func NewDriver(source SourceOperator, ops ...Operator) *Driver {
	return &Driver{
		id:     uuid.New(),
		source: source,
		ops:    ops,
	}
}

func guard(stage string, fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("stage %s: %w", stage, util.ConvertPanicError(v))
		}
	}()
	return fn()
}

// push runs one page through the operators starting at channel from,
// appending every produced page to out.
func (d *Driver) push(ctx context.Context, page *data.Page, from int, out *[]*data.Page) error {
	pages := []*data.Page{page}
	for i := from; i < len(d.ops); i++ {
		op := d.ops[i]
		var produced []*data.Page
		for _, in := range pages {
			var batch []*data.Page
			err := guard(op.Describe(), func() error {
				var err error
				batch, err = op.Execute(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			produced = append(produced, batch...)
		}
		pages = produced
		if len(pages) == 0 {
			return nil
		}
	}
	*out = append(*out, pages...)
	return nil
}

// Run pulls the source to exhaustion (or cancellation) and returns the
// pages that fell out of the last operator. Resources are released on
// every path.
func (d *Driver) Run(ctx context.Context) ([]*data.Page, error) {
	util.Info("pipeline start",
		zap.String("pipeline", d.id.String()),
		zap.String("source", d.source.Describe()),
		zap.Int("operators", len(d.ops)))
	defer d.close()

	var out []*data.Page
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", d.id, err)
		}
		var page *data.Page
		var res OperatorResult
		err := guard(d.source.Describe(), func() error {
			var err error
			page, res, err = d.source.GetData(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		if page != nil {
			if err := d.push(ctx, page, 0, &out); err != nil {
				return nil, err
			}
		}
		if res == Done {
			break
		}
	}

	// finish cascade: flushed pages of operator i still flow through
	// the operators after it
	for i, op := range d.ops {
		var flushed []*data.Page
		err := guard(op.Describe(), func() error {
			var err error
			flushed, err = op.Finish(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, page := range flushed {
			if i+1 < len(d.ops) {
				if err := d.push(ctx, page, i+1, &out); err != nil {
					return nil, err
				}
			} else {
				out = append(out, page)
			}
		}
	}
	util.Info("pipeline done",
		zap.String("pipeline", d.id.String()),
		zap.Int("pages", len(out)))
	return out, nil
}

func (d *Driver) close() {
	var errs []error
	if err := d.source.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, op := range d.ops {
		if err := op.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) != 0 {
		util.Warn("pipeline close",
			zap.String("pipeline", d.id.String()),
			zap.Error(errors.Join(errs...)))
	}
}
