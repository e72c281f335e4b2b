package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/canplot/internal/client"
	"github.com/muurk/canplot/internal/discovery"
	"github.com/muurk/canplot/internal/server"
)

// Server command flags
var (
	certPath     string
	keyPath      string
	host         string
	port         int
	logLevel     string
	serveWorkers int
	maxBodyMB    int
	advertise    bool
	instanceName string
	scanTimeout  int
	scanCheck    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)

	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (enables HTTPS with --key)")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Extraction goroutines per request (0 = GOMAXPROCS)")
	serveCmd.Flags().IntVar(&maxBodyMB, "max-body-mb", server.DefaultMaxBodyBytes>>20, "Largest accepted request body in MiB")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the API over mDNS")
	serveCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default: canplot-<hostname>)")

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	scanCmd.Flags().BoolVar(&scanCheck, "check", false, "Query each server's /healthz")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API",
	Long: `Start the extraction API used by the plotting front end.

Endpoints:
  POST /api/extract       decode signals, returns one result per signal
  POST /api/arbids        distinct arbitration ids
  POST /api/payload-size  largest payload in bits for an arbitration id
  POST /api/validate      check one signal definition
  GET  /api/types         data types, byte orders and plot colors
  GET  /ws/extract        stream results over a WebSocket
  GET  /healthz           liveness and build information

TLS is enabled when both --cert and --key are given. The server shuts down
gracefully on SIGINT or SIGTERM.`,
	Example: `  # Plain HTTP on port 8080
  canplot serve

  # HTTPS and announce on the local network
  canplot serve --cert cert.pem --key key.pem --port 8443 --advertise`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	if !cmd.Flags().Changed("workers") {
		if registry, err := loadRegistry(); err == nil {
			serveWorkers = registry.Preferences.Workers
		}
	}

	srv, err := server.New(&server.Config{
		Host:         host,
		Port:         port,
		CertPath:     certPath,
		KeyPath:      keyPath,
		LogLevel:     logLevel,
		Workers:      serveWorkers,
		MaxBodyBytes: int64(maxBodyMB) << 20,
		Advertise:    advertise,
		InstanceName: instanceName,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find canplot servers on the local network",
	Long: `Browse mDNS for canplot servers started with 'canplot serve --advertise'
and list their addresses and versions.`,
	Example: `  # Scan for 5 seconds (default)
  canplot scan

  # Quick scan
  canplot scan --timeout 2

  # Confirm each server answers
  canplot scan --check`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for canplot servers (timeout: %ds)...\n\n", scanTimeout)

	peers, err := discovery.Scan(context.Background(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(peers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Start the server with 'canplot serve --advertise'")
		fmt.Println("  - Check that multicast traffic is allowed on this network")
		fmt.Println("  - Try increasing --timeout")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(peers))
	for i, peer := range peers {
		fmt.Printf("%d. %s\n", i+1, peer.Instance)
		fmt.Printf("   URL:     %s\n", peer.BaseURL())
		if v := peer.Version(); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		if peer.Hostname != "" {
			fmt.Printf("   Host:    %s\n", peer.Hostname)
		}
		if scanCheck {
			fmt.Printf("   Health:  %s\n", checkPeer(peer))
		}
		fmt.Println()
	}
	return nil
}

// checkPeer queries a peer's health endpoint without retrying
func checkPeer(peer *discovery.Peer) string {
	c := client.NewClient(peer.BaseURL())
	c.MaxRetries = 0
	c.SetTimeout(3 * time.Second)

	health, err := c.Health(context.Background())
	if err != nil {
		return "unreachable (" + err.Error() + ")"
	}
	return fmt.Sprintf("%s, %s on %s", health.Status, health.Version, health.Platform)
}

// lookupPeer finds an advertised server by instance name
var lookupPeer = func(ctx context.Context, instance string) (*discovery.Peer, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	return scanner.WaitForPeer(ctx, instance)
}

// resolveRemote turns a --remote value into a base URL. Anything without
// a scheme is treated as an mDNS instance name.
func resolveRemote(ctx context.Context, target string) (string, error) {
	if strings.Contains(target, "://") {
		return target, nil
	}

	peer, err := lookupPeer(ctx, target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve server %q: %w", target, err)
	}
	return peer.BaseURL(), nil
}

// remoteClient returns a client for the server named by --remote
func remoteClient(ctx context.Context) (*client.Client, error) {
	baseURL, err := resolveRemote(ctx, remoteURL)
	if err != nil {
		return nil, err
	}
	return client.NewClient(baseURL), nil
}
