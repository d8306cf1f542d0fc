package cli

import (
	"github.com/spf13/cobra"
)

// PrepareOptions holds flags for the prepare command.
type PrepareOptions struct {
	*RootOptions
	ConfigPath string
	Request    requestFlags
}

// PrepareResult is the JSON payload of the prepare command.
type PrepareResult struct {
	Query string `json:"query"`
}

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrepareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Print the query that fetch would send",
		Long: `Substitute the date range placeholders and append pagination, then
print the resulting SPARQL without contacting the endpoint.

Example:
  sparqlconn prepare --config ./weekly.yaml --start 2024-01-01 --end 2024-01-07
  sparqlconn prepare --config ./weekly.yaml --start-row 21 --row-count 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	opts.Request.bind(cmd)

	return cmd
}

func runPrepare(opts *PrepareOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	dr, err := opts.Request.dateRange()
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidFlag, ExitCommandError, err.Error(), nil)
	}
	pg, err := opts.Request.pagination()
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidFlag, ExitCommandError, err.Error(), nil)
	}

	cfg, err := loadConfig(formatter, opts.ConfigPath)
	if err != nil {
		return err
	}

	q, err := newConnector(opts.RootOptions, cfg, logger, nil).PrepareQuery(cfg.Connector(), dr, pg)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PrepareResult{Query: q})
	}
	return formatter.Success(q)
}
