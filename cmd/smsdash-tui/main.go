package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/smsdash/internal/client"
	"github.com/matheus3301/smsdash/internal/lock"
	"github.com/matheus3301/smsdash/internal/profile"
	"github.com/matheus3301/smsdash/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	urlFlag := flag.String("url", "", "gateway base URL (skips discovery and auto-start)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var opts []client.Option
	if p, err := profile.Load(profileName, os.Getenv); err == nil && p.Server.APIToken != "" {
		opts = append(opts, client.WithToken(p.Server.APIToken))
	}

	baseURL := *urlFlag
	if baseURL == "" {
		var err error
		baseURL, err = discover(profileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	c := client.New(baseURL, opts...)
	if !probeGateway(c) {
		fmt.Fprintf(os.Stderr, "gateway at %s is not answering\n", baseURL)
		os.Exit(1)
	}

	app := tui.NewApp(c, profileName, baseURL)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// discover returns the URL of the gateway serving profileName, starting one
// when none holds the profile lock.
func discover(profileName string) (string, error) {
	dir := profile.Dir(profileName)
	h, err := lock.ReadHolder(dir)
	if err == nil {
		return client.BaseURL(h.Addr), nil
	}
	if !errors.Is(err, lock.ErrNotHeld) {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "gateway not running for profile %q, starting...\n", profileName)
	if err := startGateway(profileName); err != nil {
		return "", fmt.Errorf("start gateway: %w", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if h, err := lock.ReadHolder(dir); err == nil && h.Addr != "" {
			return client.BaseURL(h.Addr), nil
		}
		time.Sleep(300 * time.Millisecond)
	}
	return "", errors.New("gateway did not become ready")
}

func startGateway(profileName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	smsdashd := filepath.Join(filepath.Dir(executable), "smsdashd")

	if _, err := os.Stat(smsdashd); err != nil {
		smsdashd = "smsdashd"
	}

	cmd := exec.Command(smsdashd, "--profile", profileName)
	// Inherit stderr so gateway startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// probeGateway polls the health endpoint until it answers or 10s pass.
func probeGateway(c *client.Client) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Health(ctx)
		cancel()
		if err == nil {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
