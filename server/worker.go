// The MIT License (MIT)
//
// # Copyright (c) 2025 canvastorm
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/canvastorm/canvastorm/std"
)

const (
	// ingressBacklog bounds datagrams queued from connection readers toward
	// the worker loop; overflow drops, same policy as the SPSC ring.
	ingressBacklog = 4096

	// acceptBacklog bounds handshaken connections awaiting admission.
	acceptBacklog = 256

	// broadcastPollInterval is how often a worker checks the active index.
	broadcastPollInterval = 100 * time.Millisecond

	// sweepInterval throttles connection maintenance.
	sweepInterval = 500 * time.Millisecond
)

// inboundWrite is a parsed datagram tagged with the slot that produced it.
type inboundWrite struct {
	userID uint32
	pw     std.PixelWrite
}

// workerCore owns one SO_REUSEPORT socket, its QUIC connections, the cooldown
// state for its user slots and the producer side of one SPSC ring. Everything
// here is single-goroutine state except the channels feeding the loop;
// touching another worker's state is undefined.
type workerCore struct {
	id          int
	sockBuf     int
	quiet       bool
	masterQueue *spscRing
	cooldown    cooldownBitset
	wheel       *timingWheel
	table       *connTable
	bcast       *broadcaster
	clock       *Clock

	ingress chan inboundWrite
	accepts chan datagramConn
}

func newWorkerCore(id int, sockBuf int, quiet bool, queue *spscRing, pool *bufferPool, clock *Clock) *workerCore {
	w := &workerCore{
		id:          id,
		sockBuf:     sockBuf,
		quiet:       quiet,
		masterQueue: queue,
		wheel:       newTimingWheel(),
		bcast:       newBroadcaster(pool),
		clock:       clock,
		ingress:     make(chan inboundWrite, ingressBacklog),
		accepts:     make(chan datagramConn, acceptBacklog),
	}
	w.table = newConnTable(maxConnPerWorker, &w.cooldown)
	return w
}

// run is the worker's main loop. It locks its goroutine to an OS thread, pins
// it to coreID, binds its own copy of the shared port and services ingress,
// ticks, broadcasts and maintenance from a single goroutine.
func (w *workerCore) run(coreID int, tlsConf *tls.Config) {
	runtime.LockOSThread()
	if err := pinToCore(coreID); err != nil {
		log.Println("worker", w.id, "affinity:", err)
	}

	pc, err := listenPacket(fmt.Sprintf("0.0.0.0:%d", std.ServerPort), w.sockBuf)
	checkError(err)

	tr := &quic.Transport{Conn: pc}
	ln, err := tr.Listen(tlsConf, quicConfig())
	checkError(err)
	log.Printf("worker %d listening on %v (core %d)", w.id, pc.LocalAddr(), coreID)

	go w.acceptLoop(ln)

	bcast := time.NewTicker(broadcastPollInterval)
	sweep := time.NewTicker(sweepInterval)
	defer bcast.Stop()
	defer sweep.Stop()

	lastTickSec := w.clock.NowSec()
	for {
		select {
		case ev := <-w.ingress:
			w.handleWrite(ev)
		case conn := <-w.accepts:
			w.admit(conn)
		case <-bcast.C:
			// wall-clock tick first: expire cooldowns before fanning out
			if now := w.clock.NowSec(); now > lastTickSec {
				w.wheel.tick(&w.cooldown)
				lastTickSec = now
			}
			w.serviceBroadcast()
		case <-sweep.C:
			for _, id := range w.table.sweep() {
				if !w.quiet {
					log.Printf("worker %d conn closed, slot %d recycled", w.id, id)
				}
			}
		}
	}
}

// handleWrite is the admission point: cooldown gate, then hand-off to the
// master. A full ring drops the write; the user is on cooldown by then and
// the next broadcast resyncs its client.
func (w *workerCore) handleWrite(ev inboundWrite) {
	if w.cooldown.isOnCooldown(ev.userID) {
		return
	}
	w.cooldown.setCooldown(ev.userID)
	w.wheel.addCooldown(ev.userID)
	w.masterQueue.push(ev.pw)
}

func (w *workerCore) admit(conn datagramConn) {
	id, ok := w.table.admit(conn)
	if !ok {
		if !w.quiet {
			log.Printf("worker %d at capacity, refused %v", w.id, conn.RemoteAddr())
		}
		return
	}
	if !w.quiet {
		log.Printf("worker %d conn open %v, slot %d", w.id, conn.RemoteAddr(), id)
	}
	go w.readLoop(id, conn)
}

// readLoop drains application datagrams from one connection and feeds parsed
// writes to the worker loop. It only parses; cooldown and hand-off stay with
// the loop goroutine so the SPSC single-producer contract holds.
func (w *workerCore) readLoop(id uint32, conn datagramConn) {
	ctx := conn.Context()
	for {
		data, err := conn.ReceiveDatagram(ctx)
		if err != nil {
			return
		}
		pw, ok := std.ParsePixelDatagram(data)
		if !ok {
			continue // wrong length, drop silently
		}
		select {
		case w.ingress <- inboundWrite{userID: id, pw: pw}:
		default:
			// backlog full, drop
		}
	}
}

func (w *workerCore) acceptLoop(ln *quic.Listener) {
	for {
		conn, err := ln.Accept(context.Background())
		if err != nil {
			log.Println("worker", w.id, "accept:", err)
			return
		}
		w.accepts <- conn
	}
}

// serviceBroadcast fans the newest snapshot out to every connection, chunked
// so records never split across datagrams. Sends are fire-and-forget; a lost
// chunk is repaired by the next full broadcast.
func (w *workerCore) serviceBroadcast() {
	payload, full := w.bcast.poll()
	if payload == nil {
		return
	}
	recordSize := std.DiffRecordSize
	if full {
		recordSize = 2 // RLE pairs
	}
	forEachChunk(payload, recordSize, func(chunk []byte) {
		for _, conn := range w.table.conns {
			_ = conn.SendDatagram(chunk)
		}
	})
}
