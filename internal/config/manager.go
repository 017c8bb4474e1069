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

package config

import (
	"sync"
	"time"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
)

// Manager owns the registered components and runs their start/reload/stop
// sequence in dependency order, the way the teacher's config.componentList
// walks Dependencies() recursively before starting each component.
type Manager struct {
	mu   sync.RWMutex
	vpr  *spfvpr.Viper
	cpt  map[string]Component
	keys []string // registration order; Start/Reload walk it deterministically
}

// New returns an empty Manager bound to vpr.
func New(vpr *spfvpr.Viper) *Manager {
	return &Manager{vpr: vpr, cpt: make(map[string]Component)}
}

// Register adds a component under its own Name(). It is an error to
// register two components under the same name.
func (m *Manager) Register(c Component) liberr.Error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := c.Name()
	if _, exists := m.cpt[name]; exists {
		return ErrDuplicateName
	}
	m.cpt[name] = c
	m.keys = append(m.keys, name)
	return nil
}

// Get returns the component registered under name, if any.
func (m *Manager) Get(name string) (Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cpt[name]
	return c, ok
}

func (m *Manager) configGetter() FuncConfigGet {
	return func(key string) *spfvpr.Viper {
		if key == "" {
			return m.vpr
		}
		return m.vpr.Sub(key)
	}
}

// RegisterFlags lets every registered component add its own cobra flags.
func (m *Manager) RegisterFlags(cmd *spfcbr.Command) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, key := range m.keys {
		if err := m.cpt[key].RegisterFlag(cmd, m.vpr); err != nil {
			return err
		}
	}
	return nil
}

// Start starts every registered component in dependency order (§4.1): a
// component's Dependencies are started first, recursively, retrying a
// dependency briefly before giving up, matching the teacher's own startOne
// retry loop.
func (m *Manager) Start() liberr.Error {
	started := make(map[string]bool, len(m.keys))
	for _, key := range m.keys {
		if err := m.startOne(key, started); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) startOne(key string, started map[string]bool) liberr.Error {
	if started[key] {
		return nil
	}

	cpt, ok := m.Get(key)
	if !ok {
		return ErrComponentNotFound
	}
	if cpt.IsStarted() {
		started[key] = true
		return nil
	}

	for _, dep := range cpt.Dependencies() {
		var err liberr.Error
		for retry := 0; retry < 3; retry++ {
			if err = m.startOne(dep, started); err == nil {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if err != nil {
			return err
		}
	}

	if err := cpt.Start(m.configGetter()); err != nil {
		return err
	}
	started[key] = true
	return nil
}

// Reload reloads every component in dependency order, visiting each at
// most once even if several components depend on it.
func (m *Manager) Reload() liberr.Error {
	reloaded := make(map[string]bool, len(m.keys))
	for _, key := range m.keys {
		if err := m.reloadOne(key, reloaded); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) reloadOne(key string, reloaded map[string]bool) liberr.Error {
	if reloaded[key] {
		return nil
	}

	cpt, ok := m.Get(key)
	if !ok {
		return ErrComponentNotFound
	}

	for _, dep := range cpt.Dependencies() {
		if err := m.reloadOne(dep, reloaded); err != nil {
			return err
		}
	}

	if err := cpt.Reload(m.configGetter()); err != nil {
		return err
	}
	reloaded[key] = true
	return nil
}

// Stop stops every registered component in reverse registration order, so
// a component that depends on another is torn down before its dependency.
func (m *Manager) Stop() {
	m.mu.RLock()
	keys := append([]string(nil), m.keys...)
	m.mu.RUnlock()

	for i := len(keys) - 1; i >= 0; i-- {
		if cpt, ok := m.Get(keys[i]); ok {
			cpt.Stop()
		}
	}
}

// IsStarted reports whether every registered component has started.
func (m *Manager) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range m.keys {
		if !m.cpt[key].IsStarted() {
			return false
		}
	}
	return true
}
