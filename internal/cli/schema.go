package cli

import (
	"github.com/spf13/cobra"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	ConfigPath string
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the declared column schema",
		Long: `Print the column schema declared in the config file, exactly as written.

Unless validate_on_describe is false, the endpoint is probed first.

Example:
  sparqlconn schema --config ./weekly.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(formatter, opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	resp, err := newConnector(opts.RootOptions, cfg, logger, nil).DescribeSchema(ctx, cfg.Connector())
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Schema declares %d column(s)", len(resp.Schema))

	return formatter.Success(resp)
}
