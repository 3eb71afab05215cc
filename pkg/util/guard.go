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

package util

import (
	"sync/atomic"

	"github.com/petermattis/goid"
)

// OwnerGuard binds a single-writer object to the first goroutine that
// touches it. Later touches from other goroutines panic.
type OwnerGuard struct {
	owner atomic.Int64
}

func (g *OwnerGuard) Check() {
	rid := goid.Get()
	if g.owner.CompareAndSwap(0, rid) {
		return
	}
	if g.owner.Load() != rid {
		panic("single-writer object touched by multiple goroutines")
	}
}

func (g *OwnerGuard) Release() {
	g.owner.Store(0)
}
