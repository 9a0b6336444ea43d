package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/property-etl/internal/cleaning"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/rawvalue"
)

// Load reads every raw record from the file at path.
func Load(ctx context.Context, path string) ([]rawvalue.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to open %s", path), Cause: err}
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(ctx, f)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("dataset loaded", "path", path, "records", len(records))
	return records, nil
}

// Decode parses a single document from r. A top-level mapping is treated as
// a batch of one; elements that are not mappings are skipped.
func Decode(ctx context.Context, r io.Reader) ([]rawvalue.Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []rawvalue.Record{}, nil
		}
		return nil, &LoadError{Message: "failed to parse dataset", Cause: err}
	}

	root, err := rawvalue.FromNode(&doc)
	if err != nil {
		return nil, &LoadError{Message: "failed to convert dataset", Cause: err}
	}

	items := cleaning.Sequence(root)
	records := make([]rawvalue.Record, 0, len(items))
	for i, item := range items {
		rec, ok := item.AsMap()
		if !ok {
			logger.FromContext(ctx).Warn("skipping non-mapping record", "position", i+1, "kind", item.Kind().String())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
