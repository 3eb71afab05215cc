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

// Bitmap is a validity mask. An empty bitmap means all rows valid.
type Bitmap struct {
	Bits []uint8
}

func EntryCount(cnt int) int {
	return (cnt + 7) / 8
}

func GetEntryIndex(idx uint64) (uint64, uint64) {
	return idx / 8, idx % 8
}

func (bm *Bitmap) Init(count int) {
	bm.Bits = make([]uint8, EntryCount(count))
	for i := range bm.Bits {
		bm.Bits[i] = 0xFF
	}
}

func (bm *Bitmap) Invalid() bool {
	return len(bm.Bits) == 0
}

func (bm *Bitmap) AllValid() bool {
	return bm.Invalid()
}

func (bm *Bitmap) RowIsValid(idx uint64) bool {
	if bm.Invalid() {
		return true
	}
	eIdx, pos := GetEntryIndex(idx)
	if eIdx >= uint64(len(bm.Bits)) {
		return true
	}
	return bm.Bits[eIdx]&(1<<pos) != 0
}

func (bm *Bitmap) Set(ridx uint64, valid bool) {
	if valid {
		bm.SetValid(ridx)
	} else {
		bm.SetInvalid(ridx)
	}
}

func (bm *Bitmap) SetValid(ridx uint64) {
	if bm.Invalid() {
		return
	}
	eIdx, pos := GetEntryIndex(ridx)
	// rows past the allocation already read as valid
	if eIdx >= uint64(len(bm.Bits)) {
		return
	}
	bm.Bits[eIdx] |= 1 << pos
}

func (bm *Bitmap) SetInvalid(ridx uint64) {
	if bm.Invalid() {
		bm.Init(DefaultVectorSize)
	}
	eIdx, pos := GetEntryIndex(ridx)
	if eIdx >= uint64(len(bm.Bits)) {
		bm.Resize(len(bm.Bits)*8, int(ridx)+1)
	}
	bm.Bits[eIdx] &= ^(uint8(1) << pos)
}

func (bm *Bitmap) Resize(old int, new int) {
	if new <= old {
		return
	}
	if bm.Bits != nil {
		ncnt := EntryCount(new)
		ocnt := EntryCount(old)
		newData := make([]uint8, ncnt)
		copy(newData, bm.Bits)
		for i := ocnt; i < ncnt; i++ {
			newData[i] = 0xFF
		}
		bm.Bits = newData
	} else {
		bm.Init(new)
	}
}

func (bm *Bitmap) CopyFrom(other *Bitmap, count int) {
	if other.AllValid() {
		bm.Bits = nil
	} else {
		eCnt := EntryCount(count)
		bm.Bits = make([]uint8, eCnt)
		copy(bm.Bits, other.Bits[:eCnt])
	}
}

func (bm *Bitmap) CountValid(count int) int {
	if bm.AllValid() {
		return count
	}
	valid := 0
	for i := 0; i < count; i++ {
		if bm.RowIsValid(uint64(i)) {
			valid++
		}
	}
	return valid
}
