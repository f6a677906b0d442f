package usecase

import (
	"sync"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

type NoticeKind string

const (
	NoticeChanged   NoticeKind = "changed"
	NoticeUnchanged NoticeKind = "unchanged"
	NoticeEmpty     NoticeKind = "empty"
)

// DigestNotice is what the notification path sends to drivers.
type DigestNotice struct {
	Kind   NoticeKind
	Text   string
	Digest *domain.PriorityDigest // nil unless Kind is NoticeChanged
}

// DigestTracker remembers the last emitted digest of one engine.
type DigestTracker struct {
	mu       sync.Mutex
	prevIDs  map[int64]struct{}
	prevText string
}

func NewDigestTracker() *DigestTracker {
	return &DigestTracker{prevIDs: map[int64]struct{}{}}
}

// Observe compares pending with the previous digest. build is only called
// when the id set changed and is not empty.
func (t *DigestTracker) Observe(pending []*domain.RideRequest, build func() domain.PriorityDigest) DigestNotice {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := domain.IDSet(pending)
	if !domain.SameIDs(ids, t.prevIDs) {
		t.prevIDs = ids
		if len(pending) == 0 {
			return DigestNotice{Kind: NoticeEmpty, Text: domain.NoRequestsText}
		}
		d := build()
		t.prevText = d.Text()
		return DigestNotice{Kind: NoticeChanged, Text: t.prevText, Digest: &d}
	}

	if len(pending) == 0 {
		return DigestNotice{Kind: NoticeEmpty, Text: domain.NoRequestsText}
	}
	text := domain.NoNewRequestsText
	if t.prevText != "" {
		text = t.prevText + "\n\n" + domain.NoNewRequestsText
	}
	return DigestNotice{Kind: NoticeUnchanged, Text: text}
}

func (t *DigestTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prevIDs = map[int64]struct{}{}
	t.prevText = ""
}
