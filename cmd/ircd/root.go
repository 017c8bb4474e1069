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

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	spfvpr "github.com/spf13/viper"

	libcbr "github.com/undernet-go/p10d/cobra"
	liblog "github.com/undernet-go/p10d/logger"
	libver "github.com/undernet-go/p10d/version"
)

var (
	flagConfig  string
	flagVerbose int
)

func appVersion() libver.Version {
	return libver.NewVersion(
		libver.License_MIT,
		"ircd",
		"Undernet-lineage P10 relay and IRCv3 client gateway",
		"2026-07-31T00:00:00Z",
		"dev",
		"v0.1.0",
		"undernet-go",
		"ircd",
		struct{}{},
		0,
	)
}

// newRootCommand wires the cobra application shell: version banner,
// --config/--verbose flags, shell completion, and the serve subcommand
// that actually starts the relay.
func newRootCommand() libcbr.Cobra {
	app := libcbr.New()
	app.SetVersion(appVersion())
	app.SetFuncInit(func() {})
	app.SetLogger(func() liblog.Logger { return liblog.New(context.Background()) })
	app.Init()

	_ = app.SetFlagConfig(true, &flagConfig)
	app.SetFlagVerbose(true, &flagVerbose)

	app.AddCommandCompletion()
	app.AddCommand(newServeCommand())

	return app
}

func printBanner(v libver.Version) {
	banner := color.New(color.FgCyan, color.Bold)
	_, _ = banner.Println(v.GetHeader())
	_, _ = fmt.Println(v.GetInfo())
}

func newConfigViper() *spfvpr.Viper {
	v := spfvpr.New()
	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
		_ = v.ReadInConfig()
	}
	return v
}
