package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/chrishayuk/chuk-mcp/mcp"
)

// newSchemaCmd prints the JSON Schema of the client's capability and
// request-parameter structs, useful when debugging a handshake against
// an unfamiliar server: an operator can see exactly what shapes this
// client declares and expects without reading the Go source.
func newSchemaCmd() *cobra.Command {
	var which string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema this client declares for its capability/request shapes",
		RunE: func(cmd *cobra.Command, args []string) error {
			reflector := &jsonschema.Reflector{ExpandedStruct: true}

			var schema *jsonschema.Schema
			switch which {
			case "", "capabilities":
				schema = reflector.Reflect(&mcp.Capabilities{})
			case "tools-call":
				schema = reflector.Reflect(&mcp.ToolsCallParams{})
			case "resources-read":
				schema = reflector.Reflect(&mcp.ResourcesReadParams{})
			case "prompts-get":
				schema = reflector.Reflect(&mcp.PromptsGetParams{})
			default:
				return fmt.Errorf("unknown schema %q (want one of: capabilities, tools-call, resources-read, prompts-get)", which)
			}

			out, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&which, "shape", "capabilities", "which declared shape to print: capabilities, tools-call, resources-read, prompts-get")
	return cmd
}
