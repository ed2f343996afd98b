package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect and resolve the server's prompts",
	}
	cmd.AddCommand(newPromptsListCmd(), newPromptsGetCmd())
	return cmd
}

func newPromptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the server's prompts",
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

			result, err := client.ListPrompts(ctx, "")
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Prompts))
			for _, p := range result.Prompts {
				rows = append(rows, []string{p.Name, p.Description})
			}
			renderTable([]string{"NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newPromptsGetCmd() *cobra.Command {
	var rawArgs []string
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Resolve a prompt template",
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

			arguments, err := parseStringArgs(rawArgs)
			if err != nil {
				return err
			}

			result, err := client.GetPrompt(ctx, args[0], arguments)
			if err != nil {
				return err
			}

			for _, m := range result.Messages {
				renderText(m.Content.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "prompt argument as key=value, repeatable")
	return cmd
}

func parseStringArgs(raw []string) (map[string]string, error) {
	generic, err := parseKeyValueArgs(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out, nil
}
