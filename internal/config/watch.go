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
	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the relay's configuration file: on every write event
// it re-reads the viper tree and calls Manager.Reload, the same watch-file
// -> re-read -> refresh-cache shape as a plain fsnotify consumer.
type Watcher struct {
	mgr *Manager
	w   *fsnotify.Watcher
	log func(error)

	stop chan struct{}
}

// WatchFile starts watching path for writes, calling onErr (if non-nil) for
// any watcher or reload error. The returned Watcher must be closed with
// Stop.
func WatchFile(mgr *Manager, path string, onErr func(error)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, err
	}

	wt := &Watcher{mgr: mgr, w: w, log: onErr, stop: make(chan struct{})}
	go wt.run()
	return wt, nil
}

func (wt *Watcher) run() {
	for {
		select {
		case <-wt.stop:
			return
		case event, ok := <-wt.w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := wt.mgr.vpr.ReadInConfig(); err != nil {
				wt.emit(err)
				continue
			}
			if err := wt.mgr.Reload(); err != nil {
				wt.emit(err)
			}
		case err, ok := <-wt.w.Errors:
			if !ok {
				return
			}
			wt.emit(err)
		}
	}
}

func (wt *Watcher) emit(err error) {
	if wt.log != nil {
		wt.log(err)
	}
}

// Stop ends the watch goroutine and releases the underlying fsnotify
// watcher.
func (wt *Watcher) Stop() error {
	close(wt.stop)
	return wt.w.Close()
}
