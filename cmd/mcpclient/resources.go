package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Inspect and read the server's resources",
	}
	cmd.AddCommand(newResourcesListCmd(), newResourcesReadCmd())
	return cmd
}

func newResourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the server's resources",
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

			result, err := client.ListResources(ctx, "")
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Resources))
			for _, r := range result.Resources {
				rows = append(rows, []string{r.URI, r.Name, r.MimeType})
			}
			renderTable([]string{"URI", "NAME", "MIME TYPE"}, rows)
			return nil
		},
	}
}

func newResourcesReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <uri>",
		Short: "Read one resource's contents",
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

			result, err := client.ReadResource(ctx, args[0])
			if err != nil {
				return err
			}

			for _, c := range result.Contents {
				if c.Text != "" {
					renderText(c.Text)
					continue
				}
				fmt.Printf("[binary content, %d base64 bytes]\n", len(c.Blob))
			}
			return nil
		},
	}
}
