package recorder

import (
	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCascade(_ *model.CascadeResult) error       { return nil }
func (n *NoopRecorder) RecordLiquidity(_ int, _ *liquidity.Report) error { return nil }
func (n *NoopRecorder) RecordDigest(_ *digest.Digest) error              { return nil }
func (n *NoopRecorder) RecentAlerts(_ int) ([]model.Alert, error)        { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
