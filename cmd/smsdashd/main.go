package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/smsdash/internal/daemon"
	"github.com/matheus3301/smsdash/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	probeFlag := flag.Bool("probe", true, "load conversations once at startup to report upstream health")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	p, err := profile.Load(profileName, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "profile %q is incomplete:\n%v\n", profileName, err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{ProfileName: profileName, Profile: p, Probe: *probeFlag}),
	)

	app.Run()
}
