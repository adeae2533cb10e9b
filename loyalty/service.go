/*
service.go - Loyalty service wiring

PURPOSE:
  Service holds the dependencies every operation needs: the tabular store,
  a structured logger, a clock, and the per-owner locks that serialize
  reconciliation.

CONCURRENCY:
  The aggregate upsert in reconcile.go is not safe under concurrent
  writers: two simultaneous uploads for the same owner could both append
  a new row for the same phone instead of one finding the other's write.
  Service therefore serializes mutating operations per owner with a keyed
  mutex. Different owners never contend.

CLOCK:
  now is injectable so tests can pin timestamps. Production uses time.Now.
*/
package loyalty

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/tabular"
)

// Service exposes every loyalty operation over an injected tabular store.
type Service struct {
	tables tabular.Store
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[OwnerID]*sync.Mutex

	// Workbooks resolves an owner's dashboard workbook for mirroring.
	// Nil disables dashboard sync (dev mode without owner workbooks).
	Workbooks WorkbookOpener

	// FleetSyncPause is the pause between owners during a full-fleet
	// dashboard sync, respecting the sheet engine's rate limit.
	FleetSyncPause time.Duration
}

// NewService creates a service over the given store.
func NewService(tables tabular.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tables:         tables,
		log:            log,
		now:            time.Now,
		locks:          make(map[OwnerID]*sync.Mutex),
		FleetSyncPause: 2 * time.Second,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ownerLock returns the mutex serializing writes for one owner,
// creating it on first use.
func (s *Service) ownerLock(owner OwnerID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		s.locks[owner] = l
	}
	return l
}
