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
	"time"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
	cfgpkg "github.com/undernet-go/p10d/internal/config"
	"github.com/undernet-go/p10d/internal/kvstore"
)

// KVStoreComponent owns the nutsdb-backed persistent store (history,
// metadata, markread, webpush subscriptions — §6) and runs its periodic
// maintenance sweep on a ticker while started.
type KVStoreComponent struct {
	mu      sync.Mutex
	store   *kvstore.Store
	stop    chan struct{}
	started atomic.Bool
}

// NewKVStoreComponent returns an unopened KVStoreComponent.
func NewKVStoreComponent() *KVStoreComponent { return &KVStoreComponent{} }

// Store returns the opened nutsdb store, or nil before Start.
func (c *KVStoreComponent) Store() *kvstore.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

func (c *KVStoreComponent) Name() string           { return "kvstore" }
func (c *KVStoreComponent) Dependencies() []string { return nil }

func (c *KVStoreComponent) RegisterFlag(cmd *spfcbr.Command, _ *spfvpr.Viper) error {
	cmd.PersistentFlags().String("kvstore-dir", "./data/kv", "directory the nutsdb history/metadata store is rooted at")
	return nil
}

func (c *KVStoreComponent) Start(get cfgpkg.FuncConfigGet) liberr.Error {
	vpr := get("kvstore")
	dir := "./data/kv"
	highWatermark, lowWatermark := 0, 0
	if vpr != nil {
		if d := vpr.GetString("dir"); d != "" {
			dir = d
		}
		highWatermark = vpr.GetInt("high-watermark")
		lowWatermark = vpr.GetInt("low-watermark")
	}

	store, err := kvstore.Open(kvstore.Options{Dir: dir, HighWatermark: highWatermark, LowWatermark: lowWatermark})
	if err != nil {
		return ErrKVStoreFailed.IfError(err)
	}

	c.mu.Lock()
	c.store = store
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.maintain(stop)

	c.started.Store(true)
	return nil
}

// maintain sweeps every namespace prefix for watermark eviction every
// minute, the only periodic job this component owns.
func (c *KVStoreComponent) maintain(stop chan struct{}) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			store := c.Store()
			if store == nil {
				return
			}
			for _, prefix := range []string{"hist:", "meta:", "markread:", "webpush:"} {
				_ = store.Maintenance(prefix)
			}
		}
	}
}

func (c *KVStoreComponent) Reload(get cfgpkg.FuncConfigGet) liberr.Error {
	c.Stop()
	return c.Start(get)
}

func (c *KVStoreComponent) Stop() {
	c.mu.Lock()
	stop := c.stop
	store := c.store
	c.store = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if store != nil {
		_ = store.Close()
	}
	c.started.Store(false)
}

func (c *KVStoreComponent) IsStarted() bool { return c.started.Load() }
