package connector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/sparqlconn/internal/connerr"
	"github.com/roach88/sparqlconn/internal/endpoint"
	"github.com/roach88/sparqlconn/internal/query"
	"github.com/roach88/sparqlconn/internal/schema"
	"github.com/roach88/sparqlconn/internal/translate"
)

// AuthTypeNone is the only authentication type the connector declares.
const AuthTypeNone = "NONE"

// Config is the user configuration supplied by the host.
type Config struct {
	Endpoint string `json:"endpoint"`
	Query    string `json:"query"`
	Schema   string `json:"schema"`
}

// Request is one host data request.
type Request struct {
	// Fields are the requested column names, in output order.
	Fields []string `json:"fields"`

	DateRange  *query.DateRange  `json:"dateRange,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`

	// SampleExtraction asks for the schema shape only; no query is run.
	SampleExtraction bool `json:"sampleExtraction,omitempty"`
}

// Row is one output record.
type Row = translate.Row

// SchemaResponse is returned by DescribeSchema.
type SchemaResponse struct {
	Schema schema.Schema `json:"schema"`
}

// DataResponse is returned by FetchData.
type DataResponse struct {
	Schema schema.Schema `json:"schema"`
	Rows   []Row         `json:"rows"`
}

// IDGenerator produces run ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable run ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string. Panics if generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures a Connector. Zero values select defaults.
type Options struct {
	Client     *endpoint.Client
	Preparer   *query.Preparer
	Translator *translate.Translator
	Cache      *schema.Cache

	// Recorder, when set, receives one Run per executed fetch.
	Recorder Recorder

	// IDs generates run ids. Defaults to UUIDv7Generator.
	IDs IDGenerator

	// ValidateOnDescribe probes the endpoint before describing the schema.
	ValidateOnDescribe bool

	Logger *slog.Logger
}

// Connector is the host-facing facade over the query-to-table pipeline.
type Connector struct {
	client             *endpoint.Client
	preparer           *query.Preparer
	translator         *translate.Translator
	cache              *schema.Cache
	recorder           Recorder
	ids                IDGenerator
	validateOnDescribe bool
	logger             *slog.Logger
	now                func() time.Time
}

// New creates a Connector.
func New(opts Options) *Connector {
	c := &Connector{
		client:             opts.Client,
		preparer:           opts.Preparer,
		translator:         opts.Translator,
		cache:              opts.Cache,
		recorder:           opts.Recorder,
		ids:                opts.IDs,
		validateOnDescribe: opts.ValidateOnDescribe,
		logger:             opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.client == nil {
		c.client = endpoint.NewClient(endpoint.Options{Logger: c.logger})
	}
	if c.preparer == nil {
		c.preparer = &query.Preparer{Now: time.Now, Logger: c.logger}
	}
	if c.translator == nil {
		c.translator = translate.New(translate.ModeLenient, c.logger)
	}
	if c.cache == nil {
		c.cache = schema.NewCache()
	}
	if c.ids == nil {
		c.ids = UUIDv7Generator{}
	}
	c.now = c.preparer.Now
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// AuthType reports the authentication type the host must negotiate.
func (c *Connector) AuthType() string {
	return AuthTypeNone
}

// ResetSchemaCache discards all cached schema indexes.
func (c *Connector) ResetSchemaCache() {
	c.cache.Reset()
}

// ValidateEndpoint checks that url answers SPARQL queries in JSON.
func (c *Connector) ValidateEndpoint(ctx context.Context, url string) error {
	c.logger.Info("validating endpoint", "endpoint", url)
	return c.client.Probe(ctx, url)
}

// DescribeSchema returns the declared schema exactly as the user wrote it.
// When ValidateOnDescribe is set the endpoint is probed first.
func (c *Connector) DescribeSchema(ctx context.Context, cfg Config) (*SchemaResponse, error) {
	if c.validateOnDescribe {
		if err := c.ValidateEndpoint(ctx, cfg.Endpoint); err != nil {
			return nil, err
		}
	}
	cols, err := schema.Parse(cfg.Schema)
	if err != nil {
		c.logger.Error("schema parse failed", "error", err)
		return nil, err
	}
	return &SchemaResponse{Schema: cols}, nil
}

// FetchData runs the configured query for req and returns rows aligned with
// req.Fields, alongside the matching column declarations.
//
// Unknown field names produce a nil schema entry. Preparation and endpoint
// errors abort the request; no partial rows are returned.
func (c *Connector) FetchData(ctx context.Context, cfg Config, req Request) (*DataResponse, error) {
	c.logger.Info("fetching data", "endpoint", cfg.Endpoint, "fields", req.Fields)

	idx, err := c.cache.Index(cfg.Schema)
	if err != nil {
		c.logger.Error("schema parse failed", "error", err)
		return nil, err
	}
	filtered := idx.Filter(req.Fields)

	if req.SampleExtraction {
		c.logger.Debug("sample extraction, skipping query")
		return &DataResponse{Schema: filtered, Rows: []Row{}}, nil
	}

	run := Run{
		ID:        c.ids.Generate(),
		StartedAt: c.now().UTC(),
		Endpoint:  cfg.Endpoint,
		QueryHash: queryHash(cfg.Query),
	}
	rows, err := c.execute(ctx, cfg, req, idx)
	c.record(ctx, run, rows, err)
	if err != nil {
		return nil, err
	}

	c.logger.Info("data fetched", "endpoint", cfg.Endpoint, "rows", len(rows))
	return &DataResponse{Schema: filtered, Rows: rows}, nil
}

// PrepareQuery returns the SPARQL text FetchData would send for the given
// date range and page. Either may be nil.
func (c *Connector) PrepareQuery(cfg Config, dr *query.DateRange, pg *query.Pagination) (string, error) {
	prepared, err := c.preparer.Prepare(cfg.Query, dr, pg)
	if err != nil {
		c.logger.Error("query preparation failed", "error", err)
		return "", err
	}
	return prepared, nil
}

func (c *Connector) execute(ctx context.Context, cfg Config, req Request, idx *schema.Index) ([]Row, error) {
	prepared, err := c.PrepareQuery(cfg, req.DateRange, req.Pagination)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Query(ctx, cfg.Endpoint, prepared)
	if err != nil {
		return nil, err
	}

	return c.translator.Translate(res, req.Fields, idx)
}

func (c *Connector) record(ctx context.Context, run Run, rows []Row, err error) {
	if c.recorder == nil {
		return
	}
	run.Duration = c.now().UTC().Sub(run.StartedAt)
	if err != nil {
		run.Status = RunStatusError
		run.ErrorCode = string(connerr.CodeOf(err))
	} else {
		run.Status = RunStatusSuccess
		run.RowCount = len(rows)
	}
	if recErr := c.recorder.RecordRun(ctx, run); recErr != nil {
		c.logger.Warn("failed to record run", "run_id", run.ID, "error", recErr)
	}
}

func queryHash(q string) string {
	sum := sha256.Sum256([]byte(q))
	return hex.EncodeToString(sum[:])
}
