// Copyright (c) 2016-2019 Uber Technologies, Inc.
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
package imagetransfer

import (
	"errors"
	"fmt"
)

// ErrQueueClosed is returned by TransferQueue reads and writes after the
// queue has been aborted.
var ErrQueueClosed = errors.New("transfer queue closed")

// Error is the uniform failure every transfer operation surfaces. The cause
// is reachable through Unwrap, so callers can classify failures with
// errors.Is, e.g. against context.DeadlineExceeded for timeouts.
type Error struct {
	msg   string
	cause error
}

func newError(cause error, format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}
