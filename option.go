package resocket

import (
	"time"
)

// Default configuration values.
const (
	// DefaultDelimiter marks the end of one message on the wire.
	DefaultDelimiter = "<EOF>"
	// defaultPollInterval is how often the liveness monitor probes the socket.
	defaultPollInterval = 500 * time.Millisecond
	// defaultConnectTimeout bounds a single dial.
	defaultConnectTimeout = 10 * time.Second
	// defaultWriteTimeout bounds a single synchronous send.
	defaultWriteTimeout = 30 * time.Second
	// defaultReadBufferSize is the size of the per-read scratch buffer.
	defaultReadBufferSize = 4096
	// defaultMaxMessageSize is the largest message the accumulator may hold (1MB).
	defaultMaxMessageSize = 1024 * 1024
	// defaultReconnectAttempts is one immediate attempt after a lost connection.
	defaultReconnectAttempts = 1
)

// options holds the configuration for a client.
type options struct {
	logger Logger

	// onError observes raw socket faults. It never changes the outcome.
	onError func(error)

	delimiter         string
	autoReconnect     bool
	reconnectAttempts int
	backoff           BackoffConfig

	pollInterval   time.Duration // liveness probe period
	connectTimeout time.Duration // dial deadline
	writeTimeout   time.Duration // per-send deadline
	readBufferSize int           // scratch buffer for each read
	maxMessageSize int           // accumulator cap
}

func defaultOptions() options {
	return options{
		delimiter:         DefaultDelimiter,
		autoReconnect:     true,
		reconnectAttempts: defaultReconnectAttempts,
		backoff:           DefaultBackoffConfig(),
		pollInterval:      defaultPollInterval,
		connectTimeout:    defaultConnectTimeout,
		writeTimeout:      defaultWriteTimeout,
		readBufferSize:    defaultReadBufferSize,
		maxMessageSize:    defaultMaxMessageSize,
	}
}

// Option is a function that configures client options.
type Option func(*options)

// DelimiterOption sets the end-of-transmission marker.
// It must not appear inside message payloads.
func DelimiterOption(delimiter string) Option {
	return func(o *options) {
		o.delimiter = delimiter
	}
}

// AutoReconnectOption enables or disables reconnecting after a lost connection.
// Enabled by default.
func AutoReconnectOption(enabled bool) Option {
	return func(o *options) {
		o.autoReconnect = enabled
	}
}

// ReconnectAttemptsOption sets how many dials are made after a lost connection
// before giving up. The first is immediate, later ones follow the backoff.
func ReconnectAttemptsOption(attempts int) Option {
	return func(o *options) {
		o.reconnectAttempts = attempts
	}
}

// ReconnectBackoffOption sets the delay schedule between reconnect attempts.
func ReconnectBackoffOption(cfg BackoffConfig) Option {
	return func(o *options) {
		o.backoff = cfg
	}
}

// PollIntervalOption sets the liveness probe period.
func PollIntervalOption(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

// ConnectTimeoutOption bounds how long a single dial may stay pending.
func ConnectTimeoutOption(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// WriteTimeoutOption sets the deadline applied to every send.
func WriteTimeoutOption(timeout time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = timeout
	}
}

// ReadBufferSizeOption sets the size of the scratch buffer used for each read.
func ReadBufferSizeOption(size int) Option {
	return func(o *options) {
		o.readBufferSize = size
	}
}

// MessageMaxSize sets the largest message the receiver will accept, delimiter
// excluded. A peer that sends a longer message, or more bytes without a
// delimiter, is disconnected.
func MessageMaxSize(size int) Option {
	return func(o *options) {
		o.maxMessageSize = size
	}
}

// OnErrorOption sets a callback observing raw socket faults: failed dials,
// read and write errors. Faults are handled by the client either way.
func OnErrorOption(cb func(error)) Option {
	return func(o *options) {
		o.onError = cb
	}
}

// LoggerOption returns an Option that sets the logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// checkOptions validates and fills in values left unusable by the caller.
func checkOptions(opts *options) error {
	if opts.delimiter == "" {
		return ErrInvalidDelimiter
	}

	if opts.pollInterval <= 0 {
		opts.pollInterval = defaultPollInterval
	}

	if opts.connectTimeout <= 0 {
		opts.connectTimeout = defaultConnectTimeout
	}

	if opts.writeTimeout <= 0 {
		opts.writeTimeout = defaultWriteTimeout
	}

	if opts.readBufferSize <= 0 {
		opts.readBufferSize = defaultReadBufferSize
	}

	if opts.maxMessageSize <= 0 {
		opts.maxMessageSize = defaultMaxMessageSize
	}

	if opts.maxMessageSize < len(opts.delimiter) {
		opts.maxMessageSize = len(opts.delimiter)
	}

	if opts.reconnectAttempts <= 0 {
		opts.reconnectAttempts = defaultReconnectAttempts
	}

	if opts.onError == nil {
		opts.onError = func(error) {}
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	return nil
}
