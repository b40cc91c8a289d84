package recorder

import (
	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

// Recorder persists the planner's history for later review.
type Recorder interface {
	RecordCascade(c *model.CascadeResult) error
	RecordLiquidity(year int, r *liquidity.Report) error
	RecordDigest(d *digest.Digest) error
	RecentAlerts(limit int) ([]model.Alert, error)
	Close() error
}
