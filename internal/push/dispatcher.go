package push

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/obslog"
)

// Dispatcher fans events out to live channels. Delivery is best-effort and
// at-most-once per channel: identities without a live channel are skipped
// silently, push failures are logged and not retried.
type Dispatcher struct {
	dir *Directory
}

func NewDispatcher(dir *Directory) *Dispatcher {
	return &Dispatcher{dir: dir}
}

// Publish sends event to every identity in the snapshot. The caller is
// responsible for snapshotting seats under the room lock before dispatch.
func (d *Dispatcher) Publish(ctx context.Context, identities []string, event any) {
	for _, id := range identities {
		d.PushTo(ctx, id, event)
	}
}

// PushTo sends event to a single identity. Returns false when the identity
// has no live channel or the write failed.
func (d *Dispatcher) PushTo(ctx context.Context, identity string, event any) bool {
	p := d.dir.Lookup(identity)
	if p == nil {
		return false
	}
	if err := p.Push(ctx, event); err != nil {
		obslog.L().Debug("push_failed", zap.String("identity", identity), zap.Error(err))
		return false
	}
	return true
}
