// Package archive exports ranges of the karma ledger as JSON lines to object storage.
// Exports only read the ledger.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"karmafeed/internal/model"
)

const contentTypeJSONLines = "application/x-ndjson"

// LedgerReader is the ledger's read side.
type LedgerReader interface {
	QueryRange(ctx context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error)
}

// Uploader stores one object.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Result describes a finished export.
type Result struct {
	Key     string
	Entries int
	Bytes   int
}

type Exporter struct {
	ledger   LedgerReader
	uploader Uploader
	prefix   string
}

func NewExporter(ledger LedgerReader, uploader Uploader, prefix string) *Exporter {
	return &Exporter{ledger: ledger, uploader: uploader, prefix: prefix}
}

// Export uploads every ledger entry with since <= created_at < until, one JSON object per line.
func (e *Exporter) Export(ctx context.Context, since, until time.Time) (*Result, error) {
	since, until = since.UTC(), until.UTC()
	if !since.Before(until) {
		return nil, fmt.Errorf("empty export range [%s, %s)", since.Format(time.RFC3339), until.Format(time.RFC3339))
	}

	entries, err := e.ledger.QueryRange(ctx, model.LedgerQuery{Since: since, Until: until})
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", entries[i].ID, err)
		}
	}

	key := e.objectKey(since, until)
	if err := e.uploader.Put(ctx, key, buf.Bytes(), contentTypeJSONLines); err != nil {
		return nil, err
	}

	res := &Result{Key: key, Entries: len(entries), Bytes: buf.Len()}
	log.WithFields(log.Fields{"key": res.Key, "entries": res.Entries, "bytes": res.Bytes}).Info("[Archive] Ledger exported")
	return res, nil
}

// objectKey is <prefix>/YYYY/MM/DD/<since>_<until>_<uuid>.jsonl, dated by since.
func (e *Exporter) objectKey(since, until time.Time) string {
	const stamp = "20060102T150405Z"
	name := fmt.Sprintf("%s_%s_%s.jsonl", since.Format(stamp), until.Format(stamp), uuid.NewString())
	return path.Join(e.prefix, since.Format("2006/01/02"), name)
}
