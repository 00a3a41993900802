package table

import (
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// ConfirmWait tracks a confirmed unicast whose first hop succeeded and whose
// end-to-end confirmation has not arrived yet.
type ConfirmWait struct {
	Target frame.Address
	ID     uint16
	SentAt time.Time
}

// ConfirmTracker holds the outstanding confirmation waits in send order.
type ConfirmTracker struct {
	waits []ConfirmWait
}

func NewConfirmTracker() *ConfirmTracker {
	return &ConfirmTracker{}
}

func (ct *ConfirmTracker) String() string {
	return "confirm-tracker"
}

func (ct *ConfirmTracker) Len() int {
	return len(ct.waits)
}

// Clear drops every wait without reporting it.
func (ct *ConfirmTracker) Clear() {
	ct.waits = nil
}

func (ct *ConfirmTracker) Add(w ConfirmWait) {
	ct.waits = append(ct.waits, w)
}

// Resolve removes the wait for (target, id). Returns false if none matched.
func (ct *ConfirmTracker) Resolve(target frame.Address, id uint16) bool {
	for i, w := range ct.waits {
		if w.ID == id && w.Target == target {
			ct.waits = append(ct.waits[:i], ct.waits[i+1:]...)
			return true
		}
	}
	return false
}

// Expire removes and returns every wait older than timeout at now.
func (ct *ConfirmTracker) Expire(now time.Time, timeout time.Duration) (expired []ConfirmWait) {
	kept := ct.waits[:0]
	for _, w := range ct.waits {
		if now.Sub(w.SentAt) > timeout {
			expired = append(expired, w)
		} else {
			kept = append(kept, w)
		}
	}
	clear(ct.waits[len(kept):])
	ct.waits = kept
	return expired
}
