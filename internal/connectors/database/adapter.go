package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// DefaultRowSeparator joins materialised content blocks.
const DefaultRowSeparator = "\n---\n"

// Config holds the parsed settings for one database source.
type Config struct {
	DSN             string
	Query           string
	QueryFile       string
	RefColumn       string
	ContentColumns  []string
	MetadataColumns []string
	KeyColumn       string
	RowSeparator    string
}

// ParseConfig validates and parses a source's settings. The separator
// argument supplies the configured default, overridable per source.
func ParseConfig(source domain.Source, separator string) (*Config, error) {
	cfg := &Config{
		DSN:             source.Setting("dsn", ""),
		Query:           source.Setting("query", ""),
		QueryFile:       source.Setting("query_file", ""),
		RefColumn:       source.Setting("ref_column", ""),
		ContentColumns:  splitColumns(source.Setting("content_columns", "")),
		MetadataColumns: splitColumns(source.Setting("metadata_columns", "")),
		KeyColumn:       source.Setting("key_column", ""),
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: database source needs a dsn", domain.ErrInvalidInput)
	}
	if cfg.Query == "" && cfg.QueryFile == "" {
		return nil, fmt.Errorf("%w: database source needs query or query_file", domain.ErrInvalidInput)
	}
	if cfg.RefColumn == "" && len(cfg.ContentColumns) == 0 {
		return nil, fmt.Errorf("%w: database source needs ref_column or content_columns", domain.ErrInvalidInput)
	}

	cfg.RowSeparator = source.Setting("row_separator", separator)
	if cfg.RowSeparator == "" {
		cfg.RowSeparator = DefaultRowSeparator
	}

	return cfg, nil
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Adapter produces one work item per query result row.
type Adapter struct {
	sourceID string
	config   *Config

	// open creates a fresh querier per scan.
	open func(ctx context.Context) (driven.RowQuerier, error)
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates an adapter from a stored source definition. The
// separator supplies the configured content-block joiner.
func New(source domain.Source, separator string) (driven.SourceAdapter, error) {
	cfg, err := ParseConfig(source, separator)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		sourceID: source.ID,
		config:   cfg,
		open: func(context.Context) (driven.RowQuerier, error) {
			return OpenQuerier(cfg.DSN)
		},
	}, nil
}

// newWithQuerier wires a fixed querier, used by tests.
func newWithQuerier(sourceID string, cfg *Config, querier driven.RowQuerier) *Adapter {
	return &Adapter{
		sourceID: sourceID,
		config:   cfg,
		open: func(context.Context) (driven.RowQuerier, error) {
			return querier, nil
		},
	}
}

// Type returns the adapter type identifier.
func (a *Adapter) Type() domain.SourceType {
	return domain.SourceTypeDatabase
}

// SourceID returns the configured source ID.
func (a *Adapter) SourceID() string {
	return a.sourceID
}

// pinger is implemented by queriers that can verify connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// Validate checks the database is reachable and the query loads.
func (a *Adapter) Validate(ctx context.Context) error {
	if _, err := a.loadQuery(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	querier, err := a.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer querier.Close()

	if p, ok := querier.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
	}
	return nil
}

// Produce runs the query and streams an item per usable row. Rows with
// neither a reference nor content are skipped.
func (a *Adapter) Produce(ctx context.Context) (<-chan domain.WorkItem, <-chan error) {
	items := make(chan domain.WorkItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		query, err := a.loadQuery()
		if err != nil {
			errs <- fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			return
		}

		querier, err := a.open(ctx)
		if err != nil {
			errs <- fmt.Errorf("%w: opening database: %v", domain.ErrSourceUnavailable, err)
			return
		}
		defer querier.Close()

		rows, err := querier.Query(ctx, query)
		if err != nil {
			errs <- fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			return
		}

		for i, row := range rows {
			item, ok := a.itemFor(row)
			if !ok {
				logger.Debug("database: row %d has no reference or content, skipping", i+1)
				continue
			}

			select {
			case items <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	return items, errs
}

// Close releases resources. Queriers are scoped to each scan.
func (a *Adapter) Close() error {
	return nil
}

// loadQuery returns the inline statement or re-reads the query file.
func (a *Adapter) loadQuery() (string, error) {
	if a.config.Query != "" {
		return a.config.Query, nil
	}
	data, err := os.ReadFile(a.config.QueryFile)
	if err != nil {
		return "", fmt.Errorf("reading query file: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("query file %s is empty", a.config.QueryFile)
	}
	return query, nil
}

// itemFor partitions the row's columns by their designated roles and
// builds the item. The fingerprint covers every designated value in
// column order.
func (a *Adapter) itemFor(row domain.Metadata) (domain.WorkItem, bool) {
	contentSet := toSet(a.config.ContentColumns)
	metaSet := toSet(a.config.MetadataColumns)

	var (
		ref     string
		content domain.Metadata
		meta    domain.Metadata
		fields  []string
	)
	for _, f := range row {
		switch {
		case a.config.RefColumn != "" && f.Key == a.config.RefColumn:
			ref = f.Value
			fields = append(fields, f.Value)
		case contentSet[f.Key]:
			content = append(content, f)
			fields = append(fields, f.Value)
		case len(metaSet) == 0 || metaSet[f.Key]:
			meta = append(meta, f)
			fields = append(fields, f.Value)
		}
	}

	key, _ := row.Get(a.config.KeyColumn)
	if key == "" {
		key = ref
	}

	item := domain.WorkItem{
		Metadata:            meta,
		RevisionFingerprint: domain.Fingerprint(fields...),
	}

	switch {
	case ref != "":
		item.ContentRef = ref
	case len(content) > 0:
		item.Payload = materialise(content, a.config.RowSeparator)
		item.ContentRef = payloadName(key)
	default:
		return domain.WorkItem{}, false
	}

	if key == "" {
		// No key column and no reference: the fingerprint is the only
		// stable identity, so edits surface as new items.
		key = item.RevisionFingerprint
	}
	item.SourceKey = key

	return item, true
}

func toSet(cols []string) map[string]bool {
	if len(cols) == 0 {
		return nil
	}
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// materialise renders content columns as "## column" blocks.
func materialise(content domain.Metadata, separator string) []byte {
	var b strings.Builder
	for i, f := range content {
		if i > 0 {
			b.WriteString(separator)
		}
		fmt.Fprintf(&b, "## %s\n%s", f.Key, f.Value)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// payloadName suggests a file name for a materialised payload.
func payloadName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	name = strings.Trim(name, "._")
	if name == "" {
		name = "row"
	}
	return name + ".txt"
}
