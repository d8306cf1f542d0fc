package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlconn/internal/config"
	"github.com/roach88/sparqlconn/internal/connector"
	"github.com/roach88/sparqlconn/internal/endpoint"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Timeout time.Duration
}

// ValidateResult is the JSON payload of a successful validation.
type ValidateResult struct {
	Endpoint string `json:"endpoint"`
	Valid    bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <endpoint-url>",
		Short: "Check that an endpoint answers SPARQL queries in JSON",
		Long: `Send a fixed probe query to the endpoint and check that the response
is a SPARQL JSON results document.

Example:
  sparqlconn validate https://query.wikidata.org/sparql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "request timeout")

	return cmd
}

func runValidate(opts *ValidateOptions, url string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ctx, cancel := commandContext(cmd)
	defer cancel()

	conn := connector.New(connector.Options{
		Client: endpoint.NewClient(endpoint.Options{Timeout: opts.Timeout, Logger: logger}),
		Logger: logger,
	})
	if err := conn.ValidateEndpoint(ctx, url); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidateResult{Endpoint: url, Valid: true})
	}
	return formatter.Success(fmt.Sprintf("✓ %s is a SPARQL endpoint answering in JSON", url))
}
