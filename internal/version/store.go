package version

import "context"

// Store persists the schema/logic version counter.
//
// Get reports found = false when no version was ever stored. Set must reject
// any write that would decrease the stored value; the counter only moves
// forward.
type Store interface {
	Get(ctx context.Context) (version uint32, found bool, err error)
	Set(ctx context.Context, version uint32) error
}
