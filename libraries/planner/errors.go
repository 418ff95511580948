// Copyright 2024 The Accumulo Connector Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package planner

import "fmt"

// PlannerError wraps any backend error encountered while planning into a
// single error type surfaced to the caller (§4.D Failure semantics): no
// partial plans are ever returned alongside a PlannerError.
type PlannerError struct {
	Cause error
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("planner: %v", e.Cause)
}

func (e *PlannerError) Unwrap() error { return e.Cause }

func wrapPlannerError(err error) error {
	if err == nil {
		return nil
	}
	return &PlannerError{Cause: err}
}
