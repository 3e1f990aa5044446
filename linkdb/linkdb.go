/*
	Durable linkage between a billing service instance and the panel objects created for it.

	A linkage is written immediately after every confirmed panel creation so a crashed or failed
	activation leaves an inspectable record (customer created, no subscription yet) that a later run
	resumes from.  One record per service instance.
*/
package linkdb

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Linkage is the persisted state of one web hosting service.  Zero ids mean "not created".
type Linkage struct {
	ServiceID      string    `bson:"service_id" json:"service_id"`
	AccountID      int64     `bson:"account_id" json:"account_id,omitempty"`
	SubscriptionID int64     `bson:"subscription_id" json:"subscription_id,omitempty"`
	Username       string    `bson:"username,omitempty" json:"username,omitempty"`
	IP             string    `bson:"ip,omitempty" json:"ip,omitempty"`
	FollowUp       string    `bson:"follow_up,omitempty" json:"follow_up,omitempty"` // panel state that needs an operator
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// HasAccount reports whether a panel customer is on file.
func (l Linkage) HasAccount() bool {
	return l.AccountID > 0
}

// HasSubscription reports whether a panel subscription is on file.
func (l Linkage) HasSubscription() bool {
	return l.SubscriptionID > 0
}

// NeedsFollowUp reports whether the panel state is flagged for an operator.  Such a service is
// not activated again until the flag is cleared.
func (l Linkage) NeedsFollowUp() bool {
	return l.FollowUp != ""
}

// Store reads and writes linkage records.  PersistLinkage replaces the whole record, ReadLinkage
// returns an empty linkage for a service that has none.
type Store interface {
	PersistLinkage(ctx context.Context, l Linkage) error
	ReadLinkage(ctx context.Context, serviceID string) (Linkage, error)
}

var ErrNoServiceID = errors.New("linkage has no service id")

// MemoryStore keeps linkages in process.  Used by tests and the dry-run mode of the service.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Linkage
	writes  []Linkage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Linkage{}}
}

func (m *MemoryStore) PersistLinkage(ctx context.Context, l Linkage) error {
	if l.ServiceID == "" {
		return ErrNoServiceID
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[l.ServiceID] = l
	m.writes = append(m.writes, l)
	return nil
}

func (m *MemoryStore) ReadLinkage(ctx context.Context, serviceID string) (Linkage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.records[serviceID]; ok {
		return l, nil
	}
	return Linkage{ServiceID: serviceID}, nil
}

// Writes returns every persisted record in order, checkpoints included.
func (m *MemoryStore) Writes() []Linkage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Linkage(nil), m.writes...)
}
