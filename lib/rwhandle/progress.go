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
	"sync"
	"time"

	"github.com/makara-io/makara/utils/log"

	"github.com/andres-erbsen/clock"
	"go.uber.org/atomic"
)

const (
	// Progress is logged when it advances at least this many percent since
	// the last logged value...
	_minProgressStep = 25

	// ...and at most once per this interval.
	_minProgressInterval = time.Minute
)

// progressLogger tracks bytes moved through a handle against a declared total
// and periodically logs percent completion.
type progressLogger struct {
	name string
	size int64
	clk  clock.Clock

	transferred atomic.Int64

	mu         sync.Mutex
	lastUpdate time.Time
	lastLogged int64
}

func newProgressLogger(name string, size int64, clk clock.Clock) *progressLogger {
	return &progressLogger{name: name, size: size, clk: clk}
}

func (p *progressLogger) add(n int) {
	p.transferred.Add(int64(n))
}

func (p *progressLogger) update() {
	if p.size <= 0 {
		return
	}
	now := p.clk.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lastUpdate.IsZero() && now.Sub(p.lastUpdate) < _minProgressInterval {
		return
	}
	p.lastUpdate = now
	pct := 100 * p.transferred.Load() / p.size
	if pct == 100 || pct-p.lastLogged >= _minProgressStep {
		log.With("name", p.name).Debugf("Transfer progress %d%%", pct)
		p.lastLogged = pct
	}
}
