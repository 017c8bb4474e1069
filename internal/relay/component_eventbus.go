/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package relay

import (
	"sync"
	"sync/atomic"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
	cfgpkg "github.com/undernet-go/p10d/internal/config"
	"github.com/undernet-go/p10d/internal/eventbus"
)

// EventBusComponent owns the embedded NATS bus offload producers (webpush,
// zstd, chathistory federation answers) publish their results on, per §5's
// "communicate with the event loop through bounded, single-producer/
// single-consumer message queues" rule. It depends on kvstore because the
// chathistory-answer subject handler writes into the kv store directly.
type EventBusComponent struct {
	mu      sync.Mutex
	bus     *eventbus.Bus
	started atomic.Bool
}

// NewEventBusComponent returns an unstarted EventBusComponent.
func NewEventBusComponent() *EventBusComponent { return &EventBusComponent{} }

// Bus returns the running bus, or nil before Start.
func (c *EventBusComponent) Bus() *eventbus.Bus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus
}

func (c *EventBusComponent) Name() string           { return "eventbus" }
func (c *EventBusComponent) Dependencies() []string { return []string{"kvstore"} }

func (c *EventBusComponent) RegisterFlag(*spfcbr.Command, *spfvpr.Viper) error { return nil }

func (c *EventBusComponent) Start(cfgpkg.FuncConfigGet) liberr.Error {
	bus, err := eventbus.Start()
	if err != nil {
		return ErrEventBusFailed.IfError(err)
	}

	c.mu.Lock()
	c.bus = bus
	c.mu.Unlock()

	c.started.Store(true)
	return nil
}

func (c *EventBusComponent) Reload(get cfgpkg.FuncConfigGet) liberr.Error {
	c.Stop()
	return c.Start(get)
}

func (c *EventBusComponent) Stop() {
	c.mu.Lock()
	bus := c.bus
	c.bus = nil
	c.mu.Unlock()

	if bus != nil {
		bus.Close()
	}
	c.started.Store(false)
}

func (c *EventBusComponent) IsStarted() bool { return c.started.Load() }
