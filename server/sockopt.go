//go:build !linux

package main

import (
	"net"

	"github.com/pkg/errors"
)

// Without SO_REUSEPORT only one worker can own the port; flows will not shard.
func listenPacket(addr string, sockBuf int) (net.PacketConn, error) {
	pc, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, errors.Wrap(err, "ListenPacket")
	}
	if uc, ok := pc.(*net.UDPConn); ok {
		uc.SetReadBuffer(sockBuf)
		uc.SetWriteBuffer(sockBuf)
	}
	return pc, nil
}
