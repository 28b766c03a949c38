package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console SSH server",
	Long: `Start an SSH server where every connection runs its own console.

The SSH user name is the save slot, so "ssh alice@host" plays slot alice.
A slot can be played by one connection at a time. All slots live on the
same saves directory or card image.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.handheld/host_key

Examples:
  handheld serve                           # Listen on :23234 with auto-generated key
  handheld serve --ssh :2222               # Listen on port 2222
  handheld serve --card ./card.db          # Keep every slot in one card image

Users can connect with:
  ssh alice@localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	consoleCfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
	}
	logger, err := newLogger(os.Stderr, consoleCfg)
	if err != nil {
		fail("%v", err)
	}

	dev, err := openDevice(consoleCfg)
	if err != nil {
		fail("opening saves: %v", err)
	}
	defer dev.Close()

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Console:     consoleCfg,
	}

	server, err := tui.NewSSHServer(cfg, dev, logger)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting handheld SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh <slot>@localhost -p %s\n", port(server.Addr()))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}

// port returns the port part of a listen address.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
