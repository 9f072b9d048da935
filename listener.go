package resocket

// Listener receives connection lifecycle and message events from a Client.
//
// All methods are invoked from goroutines owned by the Client, never from the
// caller's own Connect or Write call. Implementations that share state across
// callbacks must synchronize it themselves.
type Listener interface {
	// OnConnected is called once per established connection, before any
	// message callback for that connection.
	OnConnected(name string)
	// OnDisconnected is called once per lost connection. It is not called
	// for a teardown requested through Client.Disconnect.
	OnDisconnected(name string)
	// OnBytesReceived is called with each completed message, delimiter excluded.
	// The slice is owned by the callee.
	OnBytesReceived(data []byte)
	// OnTextReceived is called right after OnBytesReceived with the same message.
	OnTextReceived(text string)
}

// ListenerFuncs adapts plain functions to the Listener interface.
// Nil fields are skipped.
type ListenerFuncs struct {
	Connected     func(name string)
	Disconnected  func(name string)
	BytesReceived func(data []byte)
	TextReceived  func(text string)
}

// OnConnected calls f.Connected if it is set.
func (f ListenerFuncs) OnConnected(name string) {
	if f.Connected != nil {
		f.Connected(name)
	}
}

// OnDisconnected calls f.Disconnected if it is set.
func (f ListenerFuncs) OnDisconnected(name string) {
	if f.Disconnected != nil {
		f.Disconnected(name)
	}
}

// OnBytesReceived calls f.BytesReceived if it is set.
func (f ListenerFuncs) OnBytesReceived(data []byte) {
	if f.BytesReceived != nil {
		f.BytesReceived(data)
	}
}

// OnTextReceived calls f.TextReceived if it is set.
func (f ListenerFuncs) OnTextReceived(text string) {
	if f.TextReceived != nil {
		f.TextReceived(text)
	}
}
