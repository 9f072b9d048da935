package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zereker/resocket"
	"github.com/Zereker/resocket/internal/logging"
)

// fileConfig is the layout of the -config file.
type fileConfig struct {
	Client resocket.Config `toml:"client" yaml:"client"`
	Log    logging.Config  `toml:"log" yaml:"log"`
}

// printer writes every received message to stdout.
type printer struct {
	logger logging.Logger
}

func (p *printer) OnConnected(name string) {
	p.logger.Info("connected", "name", name)
}

func (p *printer) OnDisconnected(name string) {
	p.logger.Info("disconnected", "name", name)
}

func (p *printer) OnBytesReceived(data []byte) {
	p.logger.Debug("received", "bytes", len(data))
}

func (p *printer) OnTextReceived(text string) {
	fmt.Println(text)
}

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	host := flag.String("host", "", "remote host, overrides the config file")
	port := flag.Int("port", 0, "remote port, overrides the config file")
	flag.Parse()

	var cfg fileConfig
	if *configPath != "" {
		if err := resocket.DecodeConfigFile(*configPath, &cfg); err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *host != "" {
		cfg.Client.Host = *host
	}
	if *port != 0 {
		cfg.Client.Port = *port
	}
	if cfg.Client.Host == "" {
		cfg.Client.Host = "127.0.0.1"
	}
	if cfg.Client.Port == 0 {
		cfg.Client.Port = 9000
	}

	logCfg := cfg.Log.Merge(logging.DefaultConfig())
	logging.ApplyEnv(&logCfg)
	logger, closer, err := logging.New(logCfg)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	opts, err := cfg.Client.Options()
	if err != nil {
		logger.Error("invalid client config", "error", err)
		return
	}
	opts = append(opts, resocket.LoggerOption(logger))

	client, err := resocket.NewClient(&printer{logger: logger}, opts...)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return
	}

	if err := client.Connect(cfg.Client.Host, cfg.Client.Port); err != nil {
		logger.Error("connect failed", "error", err)
		return
	}
	defer client.Disconnect()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down client...")
		client.Disconnect()
		_ = closer.Close()
		os.Exit(0)
	}()

	// Each stdin line is sent as one message. Lines typed while disconnected
	// are dropped.
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := client.WriteMessage(scanner.Text()); err != nil {
			logger.Warn("write failed", "error", err)
		}
	}
}
