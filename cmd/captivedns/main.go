package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"captivedns/internal/config"
	"captivedns/internal/logging"
	"captivedns/internal/server"
	"captivedns/internal/stats"
	"captivedns/internal/wire"
)

var version = "dev" // set by build flags

func main() {
	configPath := flag.String("config", "./configs/captivedns.yaml", "path to configuration file")
	logLevel := flag.String("log-level", "", "override configured log level")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("captivedns %s\n", version)
		os.Exit(0)
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logging.SetLevelString(cfg.Logging.Level)

	printConfiguration(cfg)

	responder := server.New(server.NewUDPTransport())
	responder.SetStats(stats.New())
	responder.SetDefaultTTL(cfg.Server.DefaultTTL)
	responder.SetStrictPatterns(cfg.Server.StrictPatterns)
	if err := responder.SetPort(cfg.Server.Port); err != nil {
		logging.Errorf("setting port: %v", err)
		os.Exit(1)
	}
	if err := responder.SetBindAddress(cfg.Server.BindAddress); err != nil {
		logging.Errorf("setting bind address: %v", err)
		os.Exit(1)
	}

	if err := loadRecords(responder, cfg); err != nil {
		logging.Errorf("loading records: %v", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- responder.Start()
	}()

	select {
	case sig := <-sigChan:
		logging.Infof("received signal: %v", sig)
	case err := <-serverErr:
		if err != nil {
			logging.Errorf("failed to start responder: %v", err)
			os.Exit(1)
		}
		// Started cleanly; now wait for a signal.
		sig := <-sigChan
		logging.Infof("received signal: %v", sig)
	}

	responder.Stop()
}

// loadRecords seeds the responder's table from the configuration at
// startup.
func loadRecords(r *server.Responder, cfg *config.Config) error {
	for _, rec := range cfg.Records {
		rtype, err := wire.ParseType(rec.Type)
		if err != nil {
			return err
		}
		if rtype == wire.TypeA {
			if err := r.AddARecord(rec.Domain, net.ParseIP(rec.Address), rec.TTL); err != nil {
				return fmt.Errorf("record %s: %w", rec.Domain, err)
			}
			continue
		}
		r.AddRecord(rec.Domain, rtype, rec.Data, rec.TTL)
	}

	for _, pat := range cfg.Patterns {
		r.AddWildcardPattern(pat.Pattern, pat.Domains)
	}

	logging.Infof("loaded %d records, %d patterns", len(cfg.Records), len(cfg.Patterns))
	return nil
}

func printConfiguration(cfg *config.Config) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("captivedns configuration")
	fmt.Printf("  listen:      %s:%d/udp\n", cfg.Server.BindAddress, cfg.Server.Port)
	fmt.Printf("  default ttl: %ds\n", cfg.Server.DefaultTTL)
	fmt.Printf("  records:     %d\n", len(cfg.Records))
	fmt.Printf("  patterns:    %d\n", len(cfg.Patterns))
	if cfg.Server.StrictPatterns {
		fmt.Println("  strict pattern matching enabled")
	}
}
