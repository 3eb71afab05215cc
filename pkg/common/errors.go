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
	"errors"
	"fmt"
)

// Error taxonomy of the compute core. Construction-time violations
// (ErrShapeMismatch, ErrIllegalState) abort the operator chain.
// ErrArithmeticOverflow aborts one aggregation. ErrUnsupportedShape
// marks a missing case in a closed variant set, not a user error.
var (
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrIllegalState       = errors.New("illegal state")
	ErrUnsupportedShape   = errors.New("unsupported shape")
)

func ShapeMismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}

func ArithmeticOverflow(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArithmeticOverflow, fmt.Sprintf(format, args...))
}

func IllegalState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

func UnsupportedShape(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedShape, fmt.Sprintf(format, args...))
}
