// Package peer is the minimal two-party transport surface behind the
// cmd/party CLI: one party listens, the other dials, and both exchange
// only public plan-shape handshake messages before the real secure-
// arithmetic backend (internal/mpc) takes over the actual protocol — the
// wire format for garbled circuits / OT extension is out of scope here.
//
// Shaped as a Config value plus a constructor that either listens or
// dials depending on role, and a Close. There is no JSON-RPC library
// suited to a bespoke two-party handshake among the available
// dependencies, so this is built directly on net.Listen/net.Dial — see
// DESIGN.md for why no other dependency fits this concern.
package peer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"time"
)

type Party uint8

const (
	PartyAlice Party = iota
	PartyBob
)

// Config names which party this process plays and the TCP address both
// sides rendezvous on.
type Config struct {
	Role    Party
	Address string // host:port to listen on (Alice) or dial (Bob)
	Timeout time.Duration
}

// Hello is the one public handshake message exchanged before a plan runs:
// the query's public shape. Never a secret cell value.
type Hello struct {
	PlanID      string `json:"planId"`
	BucketCount int    `json:"bucketCount"`
}

// Conn wraps the established connection plus buffered framing for
// newline-delimited JSON handshake messages.
type Conn struct {
	Role Party
	nc   net.Conn
	r    *bufio.Reader
}

// Dial connects to the listening party (role PartyAlice is assumed to be
// listening; PartyBob dials).
func Dial(cfg Config) (*Conn, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	nc, err := net.DialTimeout("tcp", cfg.Address, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("peer: dial %s: %w", cfg.Address, err)
	}
	log.Printf("peer: connected to %s", cfg.Address)
	return &Conn{Role: cfg.Role, nc: nc, r: bufio.NewReader(nc)}, nil
}

// Listen blocks until one party connects, then returns the connection.
func Listen(cfg Config) (*Conn, error) {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("peer: listen %s: %w", cfg.Address, err)
	}
	defer ln.Close()
	log.Printf("peer: listening on %s", cfg.Address)

	nc, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("peer: accept: %w", err)
	}
	log.Printf("peer: accepted connection from %s", nc.RemoteAddr())
	return &Conn{Role: cfg.Role, nc: nc, r: bufio.NewReader(nc)}, nil
}

// SendHello writes one newline-terminated JSON Hello message.
func (c *Conn) SendHello(h Hello) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = c.nc.Write(b)
	return err
}

// RecvHello reads one newline-terminated JSON Hello message.
func (c *Conn) RecvHello() (Hello, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return Hello{}, err
	}
	var h Hello
	if err := json.Unmarshal(line, &h); err != nil {
		return Hello{}, fmt.Errorf("peer: malformed hello: %w", err)
	}
	return h, nil
}

func (c *Conn) Close() error {
	return c.nc.Close()
}
