package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlconn/internal/config"
	"github.com/roach88/sparqlconn/internal/connector"
	"github.com/roach88/sparqlconn/internal/endpoint"
	"github.com/roach88/sparqlconn/internal/query"
	"github.com/roach88/sparqlconn/internal/schema"
	"github.com/roach88/sparqlconn/internal/translate"
)

// requestFlags are the request parameters shared by prepare and fetch.
type requestFlags struct {
	Start    string
	End      string
	StartRow int
	RowCount int
}

func (r *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.Start, "start", "", "date range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.End, "end", "", "date range end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&r.StartRow, "start-row", 0, "first row to return, 1-based")
	cmd.Flags().IntVar(&r.RowCount, "row-count", 0, "maximum rows to return")
}

// dateRange returns nil when no range was given. Giving only one bound is an error.
func (r *requestFlags) dateRange() (*query.DateRange, error) {
	if r.Start == "" && r.End == "" {
		return nil, nil
	}
	if r.Start == "" || r.End == "" {
		return nil, errors.New("--start and --end must be given together")
	}
	return &query.DateRange{StartDate: r.Start, EndDate: r.End}, nil
}

func (r *requestFlags) pagination() (*query.Pagination, error) {
	if r.StartRow < 0 || r.RowCount < 0 {
		return nil, errors.New("--start-row and --row-count must not be negative")
	}
	if r.StartRow == 0 && r.RowCount == 0 {
		return nil, nil
	}
	return &query.Pagination{StartRow: r.StartRow, RowCount: r.RowCount}, nil
}

// loadConfig loads path and reports failures through f.
func loadConfig(f *OutputFormatter, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return nil, f.Fail(err)
		}
		return nil, f.FailCode(ErrCodeInvalidConfig, ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newConnector wires a Connector from cfg. recorder may be nil.
func newConnector(opts *RootOptions, cfg *config.Config, logger *slog.Logger, recorder connector.Recorder) *connector.Connector {
	return connector.New(connector.Options{
		Client: endpoint.NewClient(endpoint.Options{
			Timeout:           cfg.RequestTimeout(),
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            logger,
		}),
		Preparer:           &query.Preparer{Now: opts.clock(), Logger: logger},
		Translator:         translate.New(cfg.TranslateMode(), logger),
		Cache:              schema.NewCache(),
		Recorder:           recorder,
		IDs:                opts.IDs,
		ValidateOnDescribe: cfg.ValidateOnDescribe,
		Logger:             logger,
	})
}

// commandContext returns the command's context, cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
