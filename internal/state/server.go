package state

import (
	ircnum "github.com/undernet-go/p10d/internal/numeric"
)

// BurstState tracks a linked server's position in the burst handshake (§4.4).
type BurstState uint8

const (
	BurstPre BurstState = iota
	BurstBursting
	BurstDone
)

// Server is one node of the server spanning tree (§3 "Server").
type Server struct {
	Numeric     ircnum.Server
	Name        string
	Description string
	LinkTS      int64
	StartTS     int64

	Uplink    ircnum.Server // zero value for the local server
	Downlinks map[ircnum.Server]struct{}

	Burst   BurstState
	Junction bool
	BatchID  string // active S2S network-batch id owned by this server, if any
}

func newServer(numeric ircnum.Server, name string, uplink ircnum.Server) *Server {
	return &Server{
		Numeric:   numeric,
		Name:      name,
		Uplink:    uplink,
		Downlinks: make(map[ircnum.Server]struct{}),
		Burst:     BurstPre,
	}
}
