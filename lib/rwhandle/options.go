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
package rwhandle

import (
	"net/http"

	"github.com/andres-erbsen/clock"
)

type options struct {
	clk       clock.Clock
	transport http.RoundTripper
}

func defaultOptions() *options {
	return &options{clk: clock.New()}
}

// Option allows setting optional parameters on file handles.
type Option func(*options)

// WithClock configures a handle with a custom clock.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clk = clk }
}

// WithTransport configures a handle with a custom round tripper, e.g. a
// tracing transport.
func WithTransport(tr http.RoundTripper) Option {
	return func(o *options) { o.transport = tr }
}
