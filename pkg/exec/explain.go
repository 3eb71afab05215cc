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
	"fmt"

	"github.com/xlab/treeprint"
)

// Explain renders the pipeline as a tree, source first.
func (d *Driver) Explain() string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("pipeline %s", d.id))
	tree.AddBranch(fmt.Sprintf("source: %s", d.source.Describe()))
	for i, op := range d.ops {
		tree.AddBranch(fmt.Sprintf("stage %d: %s", i, op.Describe()))
	}
	return tree.String()
}
