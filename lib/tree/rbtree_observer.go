package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/xlog"
)

type rbTreeLogObserver struct {
	logger xlog.XLogger
}

// NewRBTreeLogObserver logs every tree event at debug level under the
// "rbtree" component.
func NewRBTreeLogObserver(logger xlog.XLogger) RBTreeObserver {
	if logger == nil {
		return nil
	}
	return &rbTreeLogObserver{
		logger: logger.Named("rbtree"),
	}
}

func (o *rbTreeLogObserver) Observe(event RBTreeEvent, n int64) {
	o.logger.Debug("rbtree event",
		zap.Stringer("event", event),
		zap.Int64("n", n),
	)
}
