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
package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/utils/handler"
	"github.com/makara-io/makara/utils/log"
)

// StatusError occurs if an HTTP response has an unexpected status code.
type StatusError struct {
	Method       string
	URL          string
	Status       int
	Header       http.Header
	ResponseDump string
}

// NewStatusError returns a new StatusError.
func NewStatusError(resp *http.Response) StatusError {
	defer resp.Body.Close()
	respBytes, err := ioutil.ReadAll(resp.Body)
	respDump := string(respBytes)
	if err != nil {
		respDump = fmt.Sprintf("failed to dump response: %s", err)
	}
	return StatusError{
		Method:       resp.Request.Method,
		URL:          resp.Request.URL.String(),
		Status:       resp.StatusCode,
		Header:       resp.Header,
		ResponseDump: respDump,
	}
}

func (e StatusError) Error() string {
	if e.ResponseDump == "" {
		return fmt.Sprintf("%s %s %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s %d: %s", e.Method, e.URL, e.Status, e.ResponseDump)
}

// IsStatus returns true if err is a StatusError of the given status.
func IsStatus(err error, status int) bool {
	statusErr, ok := err.(StatusError)
	return ok && statusErr.Status == status
}

// IsCreated returns true if err is a "201 created" StatusError.
func IsCreated(err error) bool {
	return IsStatus(err, http.StatusCreated)
}

// IsNotFound returns true if err is a "404 not found" StatusError.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsConflict returns true if err is a "409 conflict" StatusError.
func IsConflict(err error) bool {
	return IsStatus(err, http.StatusConflict)
}

// IsAccepted returns true if err is a "202 accepted" StatusError.
func IsAccepted(err error) bool {
	return IsStatus(err, http.StatusAccepted)
}

// IsForbidden returns true if err is a "403 forbidden" StatusError.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}

// NetworkError occurs on any Send error which occurred while attempting to
// send the HTTP request, e.g. the given host is unresponsive.
type NetworkError struct {
	err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.err)
}

// IsNetworkError returns true if err is a NetworkError.
func IsNetworkError(err error) bool {
	_, ok := err.(NetworkError)
	return ok
}

type retryOptions struct {
	max        int
	interval   time.Duration
	backoff    float64
	backoffMax time.Duration
}

type sendOptions struct {
	body          io.Reader
	timeout       time.Duration
	acceptedCodes map[int]bool
	headers       map[string]string
	redirect      func(req *http.Request, via []*http.Request) error
	retry         retryOptions
	transport     http.RoundTripper
	ctx           context.Context

	// This is not a valid http option. It provides a way to override
	// parts of the url. For example, url.Scheme can be changed from
	// http to https.
	url *url.URL

	// This is not a valid http option. HTTP fallback is added to allow
	// easier TLS rollout: during the rollout the client may be enabled
	// before the server, and should temporarily fall back to plain http.
	httpFallback bool
}

// SendOption allows overriding defaults for the Send function.
type SendOption func(*sendOptions)

// SendNoop returns a no-op option.
func SendNoop() SendOption {
	return func(o *sendOptions) {}
}

// SendBody specifies a body for http request.
func SendBody(body io.Reader) SendOption {
	return func(o *sendOptions) { o.body = body }
}

// SendTimeout specifies timeout for http request. Zero means no timeout,
// which is what streaming requests of unbounded duration want.
func SendTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) { o.timeout = timeout }
}

// SendHeaders specifies headers for http request.
func SendHeaders(headers map[string]string) SendOption {
	return func(o *sendOptions) { o.headers = headers }
}

// SendAcceptedCodes specifies accepted codes for http request.
func SendAcceptedCodes(codes ...int) SendOption {
	m := make(map[int]bool)
	for _, c := range codes {
		m[c] = true
	}
	return func(o *sendOptions) { o.acceptedCodes = m }
}

// SendRedirect specifies a redirect policy for http request.
func SendRedirect(redirect func(req *http.Request, via []*http.Request) error) SendOption {
	return func(o *sendOptions) { o.redirect = redirect }
}

// RetryOption allows overriding defaults for the SendRetry option.
type RetryOption func(*retryOptions)

// RetryMax sets the max number of retries.
func RetryMax(max int) RetryOption {
	return func(o *retryOptions) { o.max = max }
}

// RetryInterval sets the interval between retries.
func RetryInterval(interval time.Duration) RetryOption {
	return func(o *retryOptions) { o.interval = interval }
}

// RetryBackoff sets the backoff multiplier applied to the interval after
// each retry.
func RetryBackoff(backoff float64) RetryOption {
	return func(o *retryOptions) { o.backoff = backoff }
}

// RetryBackoffMax sets the max interval the backoff multiplier may reach.
func RetryBackoffMax(backoffMax time.Duration) RetryOption {
	return func(o *retryOptions) { o.backoffMax = backoffMax }
}

// SendRetry will retry the request on network or 5XX errors.
func SendRetry(options ...RetryOption) SendOption {
	retry := retryOptions{
		max:        3,
		interval:   250 * time.Millisecond,
		backoff:    1,
		backoffMax: 30 * time.Second,
	}
	for _, o := range options {
		o(&retry)
	}
	return func(o *sendOptions) { o.retry = retry }
}

// SendTLS specifies a tls config for http request. The request is upgraded to
// https, and falls back to http if the server does not speak TLS yet.
func SendTLS(config *tls.Config) SendOption {
	return func(o *sendOptions) {
		if config == nil {
			return
		}
		o.transport = &http.Transport{TLSClientConfig: config}
		o.url.Scheme = "https"
		o.httpFallback = true
	}
}

// SendTransport specifies a transport for http request.
func SendTransport(transport http.RoundTripper) SendOption {
	return func(o *sendOptions) { o.transport = transport }
}

// SendContext specifies a context for http request.
func SendContext(ctx context.Context) SendOption {
	return func(o *sendOptions) { o.ctx = ctx }
}

// Send sends an HTTP request. May return NetworkError or StatusError.
func Send(method, rawurl string, options ...SendOption) (*http.Response, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parse url: %s", err)
	}
	opts := sendOptions{
		body:          nil,
		timeout:       60 * time.Second,
		acceptedCodes: map[int]bool{http.StatusOK: true},
		headers:       map[string]string{},
		retry:         retryOptions{max: 1},
		transport:     nil, // Use HTTP default.
		ctx:           context.Background(),
		url:           u,
	}
	for _, o := range options {
		o(&opts)
	}

	req, err := newRequest(method, opts)
	if err != nil {
		return nil, err
	}

	client := http.Client{
		Timeout:       opts.timeout,
		CheckRedirect: opts.redirect,
		Transport:     opts.transport,
	}

	var resp *http.Response
	interval := opts.retry.interval
	for attempt := 1; ; attempt++ {
		resp, err = client.Do(req)
		// Retry without tls. During tls rollout, the client may be enabled
		// before the server, so we need to fall back to http.
		if err != nil && opts.httpFallback {
			log.Warnf("Failed to send https request: %s. Retrying with http...", err)
			var httpReq *http.Request
			httpReq, err = newRequest(method, opts)
			if err != nil {
				return nil, err
			}
			httpReq.URL.Scheme = "http"
			resp, err = client.Do(httpReq)
		}
		if err == nil && (resp.StatusCode < 500 || opts.acceptedCodes[resp.StatusCode]) {
			break
		}
		if attempt >= opts.retry.max {
			break
		}
		if err == nil {
			resp.Body.Close()
		}
		time.Sleep(interval)
		interval = time.Duration(float64(interval) * opts.retry.backoff)
		if interval > opts.retry.backoffMax {
			interval = opts.retry.backoffMax
		}
		req, err = newRequest(method, opts)
		if err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, NetworkError{err}
	}
	if !opts.acceptedCodes[resp.StatusCode] {
		return nil, NewStatusError(resp)
	}
	return resp, nil
}

// Get sends a GET http request.
func Get(url string, options ...SendOption) (*http.Response, error) {
	return Send("GET", url, options...)
}

// Head sends a HEAD http request.
func Head(url string, options ...SendOption) (*http.Response, error) {
	return Send("HEAD", url, options...)
}

// Post sends a POST http request.
func Post(url string, options ...SendOption) (*http.Response, error) {
	return Send("POST", url, options...)
}

// Put sends a PUT http request.
func Put(url string, options ...SendOption) (*http.Response, error) {
	return Send("PUT", url, options...)
}

// Patch sends a PATCH http request.
func Patch(url string, options ...SendOption) (*http.Response, error) {
	return Send("PATCH", url, options...)
}

// Delete sends a DELETE http request.
func Delete(url string, options ...SendOption) (*http.Response, error) {
	return Send("DELETE", url, options...)
}

// PollAccepted wraps GET requests for endpoints which require 202-polling.
func PollAccepted(url string, b backoff.BackOff, options ...SendOption) (*http.Response, error) {
	b.Reset()
	for {
		resp, err := Get(url, options...)
		if err != nil {
			if IsAccepted(err) {
				d := b.NextBackOff()
				if d == backoff.Stop {
					break // Backoff timed out.
				}
				time.Sleep(d)
				continue
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, errors.New("backoff timed out on 202 responses")
}

func newRequest(method string, opts sendOptions) (*http.Request, error) {
	req, err := http.NewRequest(method, opts.url.String(), opts.body)
	if err != nil {
		return nil, fmt.Errorf("new request: %s", err)
	}
	req = req.WithContext(opts.ctx)
	if opts.body == nil {
		req.ContentLength = 0
	}
	for key, val := range opts.headers {
		req.Header.Set(key, val)
	}
	return req, nil
}

// GetQueryArg gets an argument from http.Request by name. When not found,
// defaultVal is returned.
func GetQueryArg(r *http.Request, name string, defaultVal string) string {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = defaultVal
	}
	return v
}

// ParseParam parses a parameter from url path and unescapes it.
func ParseParam(r *http.Request, name string) (string, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return "", handler.Errorf("param %s required", name).Status(http.StatusBadRequest)
	}
	val, err := url.PathUnescape(param)
	if err != nil {
		return "", handler.Errorf(
			"path unescape %s: %s", name, err).Status(http.StatusBadRequest)
	}
	return val, nil
}

// ParseDigest parses a digest from url path.
func ParseDigest(r *http.Request, name string) (core.Digest, error) {
	raw, err := ParseParam(r, name)
	if err != nil {
		return core.Digest{}, err
	}
	d, err := core.NewDigestFromString(raw)
	if err != nil {
		return core.Digest{}, handler.Errorf(
			"parse digest %s: %s", name, err).Status(http.StatusBadRequest)
	}
	return d, nil
}
