package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ExportStore is the slice of filestore.Store used for lead exports.
type ExportStore interface {
	Save(ctx context.Context, key string, r io.ReadSeeker, size int64, contentType string) error
}

type LeadExporter struct {
	leads *LeadService
	store ExportStore
	now   func() time.Time
}

func NewLeadExporter(leads *LeadService, store ExportStore) *LeadExporter {
	return &LeadExporter{leads: leads, store: store, now: time.Now}
}

// ExportToStore writes a timestamped CSV snapshot of all leads and returns its key.
func (e *LeadExporter) ExportToStore(ctx context.Context) (string, error) {
	buf := &bytes.Buffer{}
	rows, err := e.leads.ExportCSV(ctx, buf)
	if err != nil {
		return "", fmt.Errorf("render leads: %w", err)
	}
	key := "leads-" + e.now().UTC().Format("20060102-150405") + ".csv"
	if err := e.store.Save(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	logutil.GetLogger(ctx).Info("lead export stored", zap.String("key", key), zap.Int("rows", rows))
	return key, nil
}
