/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package hookfile is a logrus hook that appends formatted entries to a file
// on disk, opening (and creating, per options) the path once at construction
// and delegating the actual write/filter logic to hookwriter.
package hookfile

import (
	"os"

	logcfg "github.com/undernet-go/p10d/logger/config"
	loghkw "github.com/undernet-go/p10d/logger/hookwriter"
	logtps "github.com/undernet-go/p10d/logger/types"
	"github.com/undernet-go/p10d/ioutils"
	"github.com/sirupsen/logrus"
)

// HookFile is a logrus hook that writes log entries to a file.
type HookFile interface {
	logtps.Hook
}

// New opens (and optionally creates) the file described by opt and returns a
// hook that writes formatted log entries to it.
//
// Parameters:
//   - opt: file options (path, create/createPath, modes, level filter, formatting flags)
//   - f: optional formatter; entry.Bytes() is used when nil
func New(opt logcfg.OptionsFile, f logrus.Formatter) (HookFile, error) {
	if opt.Filepath == "" {
		return nil, os.ErrInvalid
	}

	fileMode := opt.FileMode.FileMode()
	pathMode := opt.PathMode.FileMode()

	if fileMode == 0 {
		fileMode = 0644
	}
	if pathMode == 0 {
		pathMode = 0755
	}

	if opt.CreatePath {
		if e := ioutils.PathCheckCreate(true, opt.Filepath, fileMode, pathMode); e != nil {
			return nil, e
		}
	}

	flags := os.O_WRONLY | os.O_APPEND
	if opt.Create {
		flags |= os.O_CREATE
	}

	fh, e := os.OpenFile(opt.Filepath, flags, fileMode)
	if e != nil {
		return nil, e
	}

	lvls := make([]logrus.Level, 0, len(opt.LogLevel))
	for _, ls := range opt.LogLevel {
		lvls = append(lvls, logLevelFromString(ls))
	}
	if len(lvls) < 1 {
		lvls = logrus.AllLevels
	}

	std := &logcfg.OptionsStd{
		DisableStack:     opt.DisableStack,
		DisableTimestamp: opt.DisableTimestamp,
		EnableTrace:      opt.EnableTrace,
		EnableAccessLog:  opt.EnableAccessLog,
	}

	return loghkw.New(fh, std, lvls, f)
}

func logLevelFromString(s string) logrus.Level {
	if l, e := logrus.ParseLevel(s); e == nil {
		return l
	}
	return logrus.InfoLevel
}
