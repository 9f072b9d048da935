//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package resocket

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// probe reports whether the peer of conn is still there. It polls the socket
// for readability without blocking and, when readable, peeks one byte without
// consuming it. A readable socket with nothing to peek is an orderly close.
//
// probe never blocks and may run while another goroutine is inside Read.
func probe(conn syscall.Conn) (bool, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return false, err
	}

	alive := true
	var probeErr error
	err = raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 0)
		if err != nil {
			if !errors.Is(err, unix.EINTR) {
				probeErr = err
			}
			return
		}
		if n == 0 || fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			return
		}

		var b [1]byte
		m, _, err := unix.Recvfrom(int(fd), b[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case m > 0:
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
		case err != nil:
			alive = false
			probeErr = err
		default:
			alive = false
		}
	})
	if err != nil {
		return false, err
	}

	return alive, probeErr
}
