// Package ircerr centralizes the error-code ranges used across the relay core.
//
// Every package that returns a coded error picks its codes from a dedicated
// block below MinAvailable, the same way the teacher library reserves one
// MinPkgXxx block per package in errors/modules.go.
package ircerr

import liberr "github.com/undernet-go/p10d/errors"

const (
	MinWire       liberr.CodeError = liberr.MinAvailable + iota*100 // 4000
	MinNumeric                                                      // 4100
	MinProto                                                        // 4200
	MinState                                                        // 4300
	MinBurst                                                        // 4400
	MinHandlers                                                     // 4500
	MinCapability                                                   // 4600
	MinBatch                                                        // 4700
	MinTagEngine                                                    // 4800
	MinServices                                                     // 4900
	MinPresence                                                     // 5000
	MinKVStore                                                      // 5100
	MinEventBus                                                     // 5200
	MinTransport                                                    // 5300
	MinConfig                                                       // 5400
	MinStdReply                                                     // 5500
)
