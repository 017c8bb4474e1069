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

// Package config drives the startup/reload/shutdown lifecycle of the
// relay's components (§4.1 transports, §4.11 kvstore/eventbus) from one
// spf13/viper configuration tree, hot-reloaded on file change via
// fsnotify.
package config

import (
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
)

// FuncConfigGet fetches the raw viper tree so a component can unmarshal its
// own subsection (e.g. Get("transport.tcp")).
type FuncConfigGet func(key string) *spfvpr.Viper

// Component is one independently startable/stoppable/reloadable piece of
// the relay: a transport listener, the kvstore, the eventbus, and so on.
// The Manager owns the start/reload/stop ordering; a Component only knows
// how to do its own job.
type Component interface {
	// Name identifies the component for dependency references and logs.
	Name() string

	// Dependencies lists other component names that must be started
	// before this one.
	Dependencies() []string

	// RegisterFlag lets the component add its own cobra flags, bound to
	// viper under its own config key.
	RegisterFlag(cmd *spfcbr.Command, vpr *spfvpr.Viper) error

	// Start brings the component up using its current configuration.
	Start(get FuncConfigGet) liberr.Error

	// Reload re-applies configuration to an already-started component. A
	// component that cannot reload in place should stop and restart
	// itself internally.
	Reload(get FuncConfigGet) liberr.Error

	// Stop shuts the component down. It must not block indefinitely.
	Stop()

	// IsStarted reports whether Start has completed successfully and Stop
	// has not yet been called.
	IsStarted() bool
}
