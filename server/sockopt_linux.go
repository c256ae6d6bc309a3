//go:build linux

package main

import (
	"context"
	"net"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// listenPacket binds a UDP socket with SO_REUSEADDR+SO_REUSEPORT so every
// worker can bind the same port and the kernel hashes flows across them, and
// enlarges both socket buffers.
func listenPacket(addr string, sockBuf int) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			err := c.Control(func(fd uintptr) {
				for _, opt := range []struct{ name, val int }{
					{unix.SO_REUSEADDR, 1},
					{unix.SO_REUSEPORT, 1},
					{unix.SO_RCVBUF, sockBuf},
					{unix.SO_SNDBUF, sockBuf},
				} {
					if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt.name, opt.val); serr != nil {
						return
					}
				}
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		return nil, errors.Wrap(err, "ListenPacket")
	}
	return pc, nil
}
