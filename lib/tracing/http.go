// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tracing

import (
	"crypto/tls"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns a middleware that traces incoming HTTP requests.
// The serviceName identifies spans from this service.
func HTTPMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// NewHTTPTransport returns an http.RoundTripper that traces outgoing HTTP
// requests and propagates trace context to downstream services.
func NewHTTPTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}

// NewHTTPTransportWithTLS returns a traced transport with TLS configuration.
func NewHTTPTransportWithTLS(tlsConfig *tls.Config) http.RoundTripper {
	base := &http.Transport{TLSClientConfig: tlsConfig}
	return otelhttp.NewTransport(base)
}

// NewHTTPClient returns an *http.Client configured with tracing.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: NewHTTPTransport(nil),
	}
}
