package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreipc/corert/internal/cli/prompt"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/launcher"
)

var launcherCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Inspect and exercise an in-process launcher registry",
	Long:  `Subcommands that demonstrate the launcher's service-registry contract.`,
}

var launcherSpawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Interactively connect to a registered service",
	Long: `Register a small set of built-in demo providers in an in-process
launcher.Registry and interactively select one to connect to, printing
the resulting message-pipe handle.

This does not start a real corertd host; it is a standalone demo of the
launcher contract in isolation.`,
	RunE: runLauncherSpawn,
}

func init() {
	launcherCmd.AddCommand(launcherSpawnCmd)
}

// echoProvider is a minimal ServiceProvider used by `launcher spawn` to
// demonstrate the registry without needing a real spawned process.
type echoProvider struct {
	name     string
	services []string
	k        kernel.Kernel
}

func (p *echoProvider) Name() string       { return p.name }
func (p *echoProvider) Services() []string { return p.services }

func (p *echoProvider) Connect(ctx context.Context, req launcher.ConnectRequest) (khandle.Raw, error) {
	ends, st := p.k.MessagePipeCreate()
	if st != nil {
		return khandle.Invalid, st
	}
	return ends.H1, nil
}

func runLauncherSpawn(cmd *cobra.Command, args []string) error {
	k := simkernel.New()
	reg := launcher.NewRegistry()
	defer func() { _ = reg.Close() }()

	providers := []*echoProvider{
		{name: "echo", services: []string{"corert.Echo"}, k: k},
		{name: "clock", services: []string{"corert.Clock"}, k: k},
	}

	options := make([]prompt.SelectOption, 0, len(providers))
	for _, p := range providers {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("failed to register provider %q: %w", p.Name(), err)
		}
		for _, svc := range p.Services() {
			options = append(options, prompt.SelectOption{
				Label:       svc,
				Value:       svc,
				Description: fmt.Sprintf("served by %q", p.Name()),
			})
		}
	}

	serviceName, err := prompt.Select("Select a service to connect to", options)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("aborted")
			return nil
		}
		return err
	}

	result, err := reg.Connect(context.Background(), launcher.ConnectRequest{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	fmt.Printf("Connected to %q via provider %q\n", serviceName, result.ProviderName)
	fmt.Printf("  Client handle: %d\n", result.Channel)
	return nil
}
