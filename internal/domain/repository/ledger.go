package repository

import "context"

// NegotiationLedger guards the end-request protocol: at most one pending
// end-point export request may exist per negotiation room. TryAcquire must
// be a conditional set that is atomic from the store's perspective, so the
// duplicate-request check holds across processes.
type NegotiationLedger interface {
	// TryAcquire records ownerID as the pending requester for roomID.
	// It returns false if a request is already pending.
	TryAcquire(ctx context.Context, roomID, ownerID string) (bool, error)
	// Get returns the pending requester for roomID, if any.
	Get(ctx context.Context, roomID string) (string, bool, error)
	// Release deletes the pending request unconditionally.
	Release(ctx context.Context, roomID string) error
}
