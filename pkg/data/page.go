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
	"github.com/huandu/go-clone"

	"github.com/daviszhen/vexec/pkg/common"
)

// Page is an aligned batch of Blocks sharing one position count, the
// unit of data flow between operators. A Page is immutable; operators
// derive new Pages instead of mutating one in place. A Page is consumed
// by exactly one downstream stage; a stage that wants to keep one
// beyond handing it off takes a Clone.
type Page struct {
	blocks    []AnyBlock
	positions int
}

func NewPage(blocks ...AnyBlock) (*Page, error) {
	if len(blocks) == 0 {
		return nil, common.ShapeMismatch("page needs at least one block")
	}
	positions := blocks[0].PositionCount()
	for i, b := range blocks {
		if b.PositionCount() != positions {
			return nil, common.ShapeMismatch(
				"block %d has %d positions, block 0 has %d",
				i, b.PositionCount(), positions)
		}
	}
	return &Page{blocks: blocks, positions: positions}, nil
}

func (page *Page) Block(channel int) AnyBlock {
	return page.blocks[channel]
}

func (page *Page) PositionCount() int {
	return page.positions
}

func (page *Page) BlockCount() int {
	return len(page.blocks)
}

// AppendBlock derives a new Page with the extra block as the last
// channel.
func (page *Page) AppendBlock(block AnyBlock) (*Page, error) {
	if block.PositionCount() != page.positions {
		return nil, common.ShapeMismatch(
			"appended block has %d positions, page has %d",
			block.PositionCount(), page.positions)
	}
	blocks := make([]AnyBlock, 0, len(page.blocks)+1)
	blocks = append(blocks, page.blocks...)
	blocks = append(blocks, block)
	return &Page{blocks: blocks, positions: page.positions}, nil
}

// Project derives a new Page keeping only the given channels, in the
// given order.
func (page *Page) Project(channels ...int) *Page {
	blocks := make([]AnyBlock, len(channels))
	for i, ch := range channels {
		blocks[i] = page.blocks[ch]
	}
	return &Page{blocks: blocks, positions: page.positions}
}

// FilterPositions derives a new Page with every block restricted to
// the given positions.
func (page *Page) FilterPositions(positions ...int) *Page {
	blocks := make([]AnyBlock, len(page.blocks))
	for i, b := range page.blocks {
		blocks[i] = b.FilterAny(positions...)
	}
	return &Page{blocks: blocks, positions: len(positions)}
}

// Clone deep-copies the page, giving the caller an independent copy it
// may retain after the original moved downstream.
func (page *Page) Clone() *Page {
	return clone.Clone(page).(*Page)
}
