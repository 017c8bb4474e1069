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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	spfcbr "github.com/spf13/cobra"

	cfgpkg "github.com/undernet-go/p10d/internal/config"
	"github.com/undernet-go/p10d/internal/numeric"
	"github.com/undernet-go/p10d/internal/relay"
)

var flagNumeric int

// newServeCommand builds the "serve" subcommand: it assembles a relay.Relay
// and every transport/storage component around it, registers them on a
// config.Manager, starts them in dependency order, then blocks until a
// termination signal arrives.
func newServeCommand() *spfcbr.Command {
	cmd := &spfcbr.Command{
		Use:   "serve",
		Short: "run the relay, accepting server links and client websocket connections",
		RunE:  runServe,
	}
	cmd.Flags().IntVar(&flagNumeric, "numeric", 1, "this relay's P10 server numeric (0-4095)")
	cmd.Flags().String("server-name", "relay.undernet.example", "this relay's server name, advertised on IRCv3 tags")
	return cmd
}

func runServe(cmd *spfcbr.Command, _ []string) error {
	printBanner(appVersion())

	me, err := numeric.EncodeServer(flagNumeric)
	if err != nil {
		return fmt.Errorf("invalid --numeric: %w", err)
	}
	serverName, _ := cmd.Flags().GetString("server-name")

	r := relay.New(me, serverName, 5*time.Minute)

	vpr := newConfigViper()
	mgr := cfgpkg.New(vpr)

	kv := relay.NewKVStoreComponent()
	eb := relay.NewEventBusComponent()
	tcp := relay.NewTCPComponent(r)
	ws := relay.NewWSComponent(r)

	for _, c := range []cfgpkg.Component{kv, eb, tcp, ws} {
		if err := mgr.Register(c); err != nil {
			return fmt.Errorf("register component: %w", err)
		}
	}

	if err := mgr.Start(); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	defer mgr.Stop()

	r.IRCv3.SetKV(kv.Store())
	r.IRCv3.SetBus(eb.Bus())
	r.Core.SetKV(kv.Store())

	waitForShutdownSignal()
	return nil
}

// waitForShutdownSignal blocks until SIGINT, SIGTERM or SIGQUIT arrives,
// the same three signals the teacher's own config.Config watches for.
func waitForShutdownSignal() {
	quit := make(chan os.Signal, 3)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
}
