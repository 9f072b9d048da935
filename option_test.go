package resocket

import (
	"errors"
	"testing"
	"time"
)

func TestDelimiterOption(t *testing.T) {
	opts := defaultOptions()
	DelimiterOption("\n")(&opts)

	if opts.delimiter != "\n" {
		t.Errorf("delimiter = %q, want %q", opts.delimiter, "\n")
	}
}

func TestAutoReconnectOption(t *testing.T) {
	opts := defaultOptions()
	if !opts.autoReconnect {
		t.Fatal("auto-reconnect should default to enabled")
	}

	AutoReconnectOption(false)(&opts)
	if opts.autoReconnect {
		t.Error("autoReconnect not disabled")
	}
}

func TestPollIntervalOption(t *testing.T) {
	opts := defaultOptions()
	PollIntervalOption(time.Second)(&opts)

	if opts.pollInterval != time.Second {
		t.Errorf("pollInterval = %v, want %v", opts.pollInterval, time.Second)
	}
}

func TestConnectTimeoutOption(t *testing.T) {
	opts := defaultOptions()
	ConnectTimeoutOption(3 * time.Second)(&opts)

	if opts.connectTimeout != 3*time.Second {
		t.Errorf("connectTimeout = %v, want 3s", opts.connectTimeout)
	}
}

func TestWriteTimeoutOption(t *testing.T) {
	opts := defaultOptions()
	WriteTimeoutOption(time.Minute)(&opts)

	if opts.writeTimeout != time.Minute {
		t.Errorf("writeTimeout = %v, want %v", opts.writeTimeout, time.Minute)
	}
}

func TestReadBufferSizeOption(t *testing.T) {
	opts := defaultOptions()
	ReadBufferSizeOption(16)(&opts)

	if opts.readBufferSize != 16 {
		t.Errorf("readBufferSize = %d, want 16", opts.readBufferSize)
	}
}

func TestMessageMaxSize(t *testing.T) {
	opts := defaultOptions()
	MessageMaxSize(4096)(&opts)

	if opts.maxMessageSize != 4096 {
		t.Errorf("maxMessageSize = %d, want 4096", opts.maxMessageSize)
	}
}

func TestReconnectOptions(t *testing.T) {
	opts := defaultOptions()
	backoff := BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 3}
	ReconnectAttemptsOption(4)(&opts)
	ReconnectBackoffOption(backoff)(&opts)

	if opts.reconnectAttempts != 4 {
		t.Errorf("reconnectAttempts = %d, want 4", opts.reconnectAttempts)
	}
	if opts.backoff != backoff {
		t.Errorf("backoff = %+v, want %+v", opts.backoff, backoff)
	}
}

func TestOnErrorOption(t *testing.T) {
	var got error
	opts := defaultOptions()
	OnErrorOption(func(err error) { got = err })(&opts)

	if opts.onError == nil {
		t.Fatal("onError is nil")
	}

	want := errors.New("boom")
	opts.onError(want)
	if got != want {
		t.Errorf("onError received %v, want %v", got, want)
	}
}

func TestLoggerOption(t *testing.T) {
	logger := &mockLogger{}
	opts := defaultOptions()
	LoggerOption(logger)(&opts)

	if opts.logger != logger {
		t.Error("logger not set correctly")
	}
}

func TestCheckOptions_DefaultValues(t *testing.T) {
	opts := options{delimiter: DefaultDelimiter}

	if err := checkOptions(&opts); err != nil {
		t.Fatalf("checkOptions failed: %v", err)
	}

	if opts.pollInterval != defaultPollInterval {
		t.Errorf("pollInterval = %v, want %v", opts.pollInterval, defaultPollInterval)
	}
	if opts.connectTimeout != defaultConnectTimeout {
		t.Errorf("connectTimeout = %v, want %v", opts.connectTimeout, defaultConnectTimeout)
	}
	if opts.writeTimeout != defaultWriteTimeout {
		t.Errorf("writeTimeout = %v, want %v", opts.writeTimeout, defaultWriteTimeout)
	}
	if opts.readBufferSize != defaultReadBufferSize {
		t.Errorf("readBufferSize = %d, want %d", opts.readBufferSize, defaultReadBufferSize)
	}
	if opts.maxMessageSize != defaultMaxMessageSize {
		t.Errorf("maxMessageSize = %d, want %d", opts.maxMessageSize, defaultMaxMessageSize)
	}
	if opts.reconnectAttempts != defaultReconnectAttempts {
		t.Errorf("reconnectAttempts = %d, want %d", opts.reconnectAttempts, defaultReconnectAttempts)
	}
	if opts.onError == nil {
		t.Error("onError should default to a no-op")
	}
	if opts.logger == nil {
		t.Error("logger should default to slog")
	}
}

func TestCheckOptions_EmptyDelimiter(t *testing.T) {
	opts := defaultOptions()
	DelimiterOption("")(&opts)

	if err := checkOptions(&opts); err != ErrInvalidDelimiter {
		t.Errorf("expected ErrInvalidDelimiter, got %v", err)
	}
}

func TestCheckOptions_MaxSizeCoversDelimiter(t *testing.T) {
	opts := defaultOptions()
	MessageMaxSize(1)(&opts)

	if err := checkOptions(&opts); err != nil {
		t.Fatalf("checkOptions failed: %v", err)
	}
	if opts.maxMessageSize != len(DefaultDelimiter) {
		t.Errorf("maxMessageSize = %d, want %d", opts.maxMessageSize, len(DefaultDelimiter))
	}
}

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestNextBackoffDelayJitterWithoutRNG(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: time.Second, Multiplier: 2.0, Jitter: true}
	if got := NextBackoffDelay(cfg, 2, nil); got != time.Second {
		t.Fatalf("attempt2 got=%v, want 1s", got)
	}
}
