package blob

import (
	"context"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/metrics"
)

type instrumented struct {
	next Store
	mc   *metrics.Collector
}

// WithMetrics records upload and delete timings on mc.
func WithMetrics(s Store, mc *metrics.Collector) Store {
	if mc == nil {
		return s
	}
	return &instrumented{next: s, mc: mc}
}

func (i *instrumented) Upload(ctx context.Context, obj Object) (string, error) {
	start := time.Now()
	p, err := i.next.Upload(ctx, obj)
	i.mc.RecordResult(metrics.OpBlobUpload, time.Since(start), err)
	return p, err
}

func (i *instrumented) Delete(ctx context.Context, bucket, path string) error {
	start := time.Now()
	err := i.next.Delete(ctx, bucket, path)
	i.mc.RecordResult(metrics.OpBlobDelete, time.Since(start), err)
	return err
}
