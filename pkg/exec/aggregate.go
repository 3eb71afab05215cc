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

	"github.com/daviszhen/vexec/pkg/aggr"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
)

type AggregatorMode int

const (
	// SingleMode consumes raw values and emits final results.
	SingleMode AggregatorMode = iota
	// PartialMode consumes raw values and emits intermediate state.
	PartialMode
	// FinalMode consumes intermediate state and emits final results.
	FinalMode
)

func (m AggregatorMode) String() string {
	switch m {
	case SingleMode:
		return "single"
	case PartialMode:
		return "partial"
	case FinalMode:
		return "final"
	default:
		panic("usp")
	}
}

// GroupingAggregationOperator accumulates every input page into its
// aggregate function and emits a single result page on Finish. Output
// channel 0 carries the group ordinals 0..MaxGroup, the remaining
// channels the result of the function for each ordinal.
type GroupingAggregationOperator struct {
	mode         AggregatorMode
	fn           aggr.GroupingAggregatorFunction
	groupChannel int
	// inputChannels names the value channel in Single/Partial mode,
	// or the state channels in Final mode.
	inputChannels []int
	finished      bool
}

func NewGroupingAggregation(
	mode AggregatorMode,
	fn aggr.GroupingAggregatorFunction,
	groupChannel int,
	inputChannels ...int,
) *GroupingAggregationOperator {
	return &GroupingAggregationOperator{
		mode:          mode,
		fn:            fn,
		groupChannel:  groupChannel,
		inputChannels: inputChannels,
	}
}

func (agg *GroupingAggregationOperator) Describe() string {
	return fmt.Sprintf("aggregate[%s, %s]", agg.mode, agg.fn.Describe())
}

func (agg *GroupingAggregationOperator) Execute(ctx context.Context, input *data.Page) ([]*data.Page, error) {
	if agg.finished {
		return nil, common.IllegalState("aggregate received input after finish")
	}
	groups, ok := input.Block(agg.groupChannel).(*data.LongBlock)
	if !ok {
		return nil, common.UnsupportedShape(
			"group channel %d is %s, want %s",
			agg.groupChannel, input.Block(agg.groupChannel).Type(), common.INT64)
	}
	switch agg.mode {
	case SingleMode, PartialMode:
		if len(agg.inputChannels) != 1 {
			return nil, common.IllegalState(
				"%s aggregation wants one value channel, got %d",
				agg.mode, len(agg.inputChannels))
		}
		if err := agg.fn.AddRawInput(groups, input.Block(agg.inputChannels[0])); err != nil {
			return nil, err
		}
	case FinalMode:
		state := make([]data.AnyBlock, 0, len(agg.inputChannels))
		for _, ch := range agg.inputChannels {
			state = append(state, input.Block(ch))
		}
		if err := agg.fn.AddIntermediateInput(groups, state); err != nil {
			return nil, err
		}
	default:
		panic("usp")
	}
	return nil, nil
}

func (agg *GroupingAggregationOperator) Finish(ctx context.Context) ([]*data.Page, error) {
	if agg.finished {
		return nil, nil
	}
	agg.finished = true
	maxGroup := agg.fn.MaxGroup()
	if maxGroup < 0 {
		return nil, nil
	}
	selected := make([]int, maxGroup+1)
	ordinals := data.NewBuilder[int64](maxGroup + 1)
	for g := 0; g <= maxGroup; g++ {
		selected[g] = g
		ordinals.AppendValue(int64(g))
	}
	ordBlock, err := ordinals.Build()
	if err != nil {
		return nil, err
	}
	blocks := []data.AnyBlock{ordBlock}
	switch agg.mode {
	case SingleMode, FinalMode:
		result, err := agg.fn.EvaluateFinal(selected)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, result)
	case PartialMode:
		state, err := agg.fn.EvaluateIntermediate(selected)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, state...)
	default:
		panic("usp")
	}
	out, err := data.NewPage(blocks...)
	if err != nil {
		return nil, err
	}
	return []*data.Page{out}, nil
}

func (agg *GroupingAggregationOperator) Close() error {
	return nil
}
