package tilestore

import (
	"github.com/sirupsen/logrus"

	"maptiler/internal/tilingindex"
)

type options struct {
	logger logrus.FieldLogger
	index  func(*Store) tilingindex.Index
}

func defaultOptions() options {
	return options{logger: logrus.StandardLogger()}
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTilingIndex resolves query boxes through idx. Without an index option
// every query scans all tiles in the file.
func WithTilingIndex(idx tilingindex.Index) Option {
	return func(o *options) {
		o.index = func(*Store) tilingindex.Index { return idx }
	}
}

// WithExtentIndex builds an R-tree over the stored tile extents at open.
func WithExtentIndex() Option {
	return func(o *options) {
		o.index = func(s *Store) tilingindex.Index { return tilingindex.NewExtent(s) }
	}
}
