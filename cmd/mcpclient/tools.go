package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and invoke the server's tools",
	}
	cmd.AddCommand(newToolsListCmd(), newToolsCallCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the server's tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootContext()
			ctx, timeoutCancel := withTimeout(ctx)
			defer timeoutCancel()
			defer cancel()

			client, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.ListTools(ctx, "")
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Tools))
			for _, tool := range result.Tools {
				rows = append(rows, []string{tool.Name, tool.Description})
			}
			renderTable([]string{"NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newToolsCallCmd() *cobra.Command {
	var rawArgs []string
	cmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Call a tool by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootContext()
			ctx, timeoutCancel := withTimeout(ctx)
			defer timeoutCancel()
			defer cancel()

			client, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			arguments, err := parseKeyValueArgs(rawArgs)
			if err != nil {
				return err
			}

			result, err := client.CallTool(ctx, args[0], arguments)
			if err != nil {
				return err
			}

			if result.IsError {
				fmt.Println(heading("tool reported an error:"))
			}
			for _, block := range result.Content {
				if block.Type == "text" {
					renderText(block.Text)
					continue
				}
				fmt.Printf("[%s content omitted]\n", block.Type)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "tool argument as key=value, repeatable")
	return cmd
}

// parseKeyValueArgs turns ["k=v", "k2=v2"] into a map, for --arg flags.
func parseKeyValueArgs(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", kv)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}
