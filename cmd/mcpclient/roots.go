package main

import (
	"github.com/spf13/cobra"
)

func newRootsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roots",
		Short: "Inspect the roots reported by the server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the roots the server reports for roots/list",
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

			result, err := client.ListRoots(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Roots))
			for _, r := range result.Roots {
				rows = append(rows, []string{r.URI, r.Name})
			}
			renderTable([]string{"URI", "NAME"}, rows)
			return nil
		},
	})
	return cmd
}
