package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/api"
)

var rawMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func (c *Cli) rawCommand() *cobra.Command {
	var (
		data   string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "api <METHOD> <path>",
		Short: "Send a raw request to the API",
		Long: "Send a request through the authenticated client. The path is relative to the API base URL,\n" +
			"an expired access token is refreshed the same way as for other commands.",
		Example: "  lingua api GET /users/progress\n  lingua api POST /ai/translate --data '{\"text\":\"hola\"}'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			if !rawMethods[method] {
				return fmt.Errorf("unsupported method %q", args[0])
			}

			path := args[1]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			opts := api.RequestOptions{Method: method}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data must be valid JSON")
				}
				opts.Body = json.RawMessage(data)
			}
			if len(params) > 0 {
				opts.Query = url.Values{}
				for _, kv := range params {
					key, value, ok := strings.Cut(kv, "=")
					if !ok || key == "" {
						return fmt.Errorf("invalid query parameter %q, expected key=value", kv)
					}
					opts.Query.Add(key, value)
				}
			}

			res, err := c.apiClient.Request(cmd.Context(), path, opts)
			if err != nil {
				return err
			}

			c.io.Printf("Status: %d\n", res.Status)
			if !res.Success {
				return resultError(res, "request failed")
			}
			if res.Message != "" && len(res.Data) > 0 {
				c.io.Println(res.Message)
			}
			return c.printData(res)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	cmd.Flags().StringArrayVar(&params, "query", nil, "Query parameter (key=value), repeatable")
	return cmd
}
