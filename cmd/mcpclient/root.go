// Command mcpclient is a thin cobra-based driver over the mcp package's
// public request API: it launches one configured MCP server over stdio,
// runs the handshake, and dispatches to a subcommand per request area.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrishayuk/chuk-mcp/config"
	"github.com/chrishayuk/chuk-mcp/mcp"
)

var (
	flagConfigPath string
	flagServerID   string
	flagCommand    string
	flagArgs       []string
	flagTimeout    time.Duration
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcpclient",
		Short: "A command-line MCP client",
		Long:  "mcpclient drives an MCP server subprocess over stdio using the chuk-mcp client library.",
	}

	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to servers.yaml (default ~/.config/chuk-mcp/servers.yaml)")
	root.PersistentFlags().StringVar(&flagServerID, "server", "", "server id to launch from the config file")
	root.PersistentFlags().StringVar(&flagCommand, "command", "", "launch command, overriding --server (e.g. 'uvx mcp-server-fetch')")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "per-request timeout")

	root.AddCommand(
		newPingCmd(),
		newToolsCmd(),
		newResourcesCmd(),
		newPromptsCmd(),
		newRootsCmd(),
		newSchemaCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openClient resolves launch parameters from --command or the config
// file, opens a stdio-transported Client, and runs the handshake.
func openClient(ctx context.Context) (*mcp.Client, error) {
	launch, err := resolveLaunchParams()
	if err != nil {
		return nil, err
	}

	transport := mcp.NewStdioTransport(launch.Command, launch.Args,
		mcp.WithEnv(launch.Env), mcp.WithWorkingDir(launch.Cwd))
	client := mcp.NewClient(transport)

	if _, err := client.Open(ctx); err != nil {
		return nil, fmt.Errorf("open client: %w", err)
	}
	return client, nil
}

// launchParams is the full {command, args, env, cwd} tuple the config
// loader hands the core verbatim.
type launchParams struct {
	Command string
	Args    []string
	Env     map[string]string
	Cwd     string
}

func resolveLaunchParams() (launchParams, error) {
	if fields := strings.Fields(flagCommand); len(fields) > 0 {
		args := append(fields[1:], flagArgs...)
		return launchParams{Command: fields[0], Args: args}, nil
	}

	path := flagConfigPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return launchParams{}, err
		}
		path = defaultPath
	}

	doc, err := config.Load(path)
	if err != nil {
		return launchParams{}, fmt.Errorf("load config: %w", err)
	}

	if flagServerID == "" {
		if len(doc.Servers) == 1 {
			s := doc.Servers[0]
			return launchParams{Command: s.Command, Args: s.Args, Env: s.Env, Cwd: s.Cwd}, nil
		}
		return launchParams{}, fmt.Errorf("%d servers configured in %s; pass --server <id>", len(doc.Servers), path)
	}

	server, ok := doc.ByID(flagServerID)
	if !ok {
		return launchParams{}, fmt.Errorf("no server named %q in %s", flagServerID, path)
	}
	return launchParams{Command: server.Command, Args: server.Args, Env: server.Env, Cwd: server.Cwd}, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, flagTimeout)
}

// rootContext returns a context cancelled on SIGINT/SIGTERM, so a server
// subprocess wedged mid-request gets a cancelled pending call instead of
// the CLI hanging until someone kills it.
func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
