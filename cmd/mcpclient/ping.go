package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured server answers a liveness ping",
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

			if err := client.Ping(ctx); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}
}
