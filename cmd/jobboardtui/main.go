package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/jobboard/internal/instance"
	"github.com/matheus3301/jobboard/internal/logging"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/tui"
	"github.com/matheus3301/jobboard/internal/tui/client"
)

func main() {
	instanceFlag := flag.String("instance", "", "instance name (overrides config default)")
	userFlag := flag.String("user", "", "user id to sign in as")
	flag.Parse()

	name := instance.Resolve(*instanceFlag)
	if err := instance.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *userFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: jobboardtui [--instance <name>] --user <id>")
		os.Exit(1)
	}

	socketPath := instance.SocketPath(name)

	// Probe daemon health; auto-start if needed.
	if !probeDaemon(socketPath) {
		fmt.Fprintf(os.Stderr, "daemon not running for instance %q, starting...\n", name)
		if err := startDaemon(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	sess, err := signIn(c, *userFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.NewFileOnly(filepath.Join(instance.LogDir(name), "jobboardtui.log"), name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	app := tui.NewApp(c, sess, name, logger)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func signIn(c *client.Client, userID string) (session.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := c.Directory.GetUser(ctx, userID)
	if err != nil {
		return session.Session{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	if u == nil {
		return session.Session{}, fmt.Errorf("no user %q; create one with jobboardctl users add", userID)
	}
	sess := session.FromUser(u)
	if err := sess.Validate(); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// probeDaemon checks if a daemon is running and responsive on the socket.
func probeDaemon(socketPath string) bool {
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	c, err := client.New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.Daemon.GetStatus(ctx)
	return err == nil
}

func startDaemon(name string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	daemonBin := filepath.Join(filepath.Dir(executable), "jobboardd")

	if _, err := os.Stat(daemonBin); err != nil {
		daemonBin = "jobboardd"
	}

	cmd := exec.Command(daemonBin, "--instance", name)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// waitForDaemon polls the daemon with a real status call, not just a socket connect.
func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
