//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package resocket

import (
	"context"
	"testing"
	"time"

	"github.com/Zereker/resocket/internal/echopeer"
)

func TestSession_MonitorDetectsPeerClose(t *testing.T) {
	sess, serverConn := newPairSession(t, ListenerFuncs{})

	done := make(chan error, 1)
	go func() { done <- sess.monitorLoop(sess.ctx) }()

	expectNone(t, done, 3*testPollInterval, "monitor result on a live connection")

	closed := time.Now()
	serverConn.Close()

	if got := receive(t, done, "monitorLoop to return"); got != ErrPeerClosed {
		t.Fatalf("monitorLoop returned %v, want ErrPeerClosed", got)
	}
	if elapsed := time.Since(closed); elapsed > 10*testPollInterval {
		t.Errorf("peer close detected after %v, poll interval %v", elapsed, testPollInterval)
	}
}

func TestSession_MonitorStopsOnCancel(t *testing.T) {
	sess, _ := newPairSession(t, ListenerFuncs{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.monitorLoop(ctx) }()

	cancel()
	if got := receive(t, done, "monitorLoop to return"); got != context.Canceled {
		t.Errorf("monitorLoop returned %v, want context.Canceled", got)
	}
}

// The monitor alone, without the receiver, drives the loss and the reconnect.
func TestClient_MonitorLossReconnects(t *testing.T) {
	server := startPeer(t, echopeer.Echo)
	rec := newRecorder()
	client := newTestClient(t, rec)

	sess, serverConn := newPairSession(t, rec)

	addr := server.Addr()
	client.mu.Lock()
	client.host = addr.IP.String()
	client.port = addr.Port
	client.name = addr.String()
	client.sess = sess
	client.state = StateConnected
	client.mu.Unlock()

	serverConn.Close()

	done := make(chan error, 1)
	go func() { done <- sess.monitorLoop(sess.ctx) }()
	cause := receive(t, done, "monitorLoop to return")
	if cause != ErrPeerClosed {
		t.Fatalf("monitorLoop returned %v, want ErrPeerClosed", cause)
	}

	client.lost(sess, cause)
	client.lost(sess, cause)

	if got := receive(t, rec.disconnected, "disconnect"); got != sess.name {
		t.Errorf("disconnect name = %q, want %q", got, sess.name)
	}
	if got := receive(t, rec.connected, "reconnect"); got != addr.String() {
		t.Errorf("reconnect name = %q, want %q", got, addr.String())
	}
	expectNone(t, rec.disconnected, 3*testPollInterval, "second disconnect")

	roundTrip(t, client, rec, "after monitor loss")
}
