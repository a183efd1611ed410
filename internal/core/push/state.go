// Package push acquires delivery tokens and registers the device with the
// backend device registry.
package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/herald/internal/core/kv"
	"github.com/google/uuid"
)

const stateKey = "device"

// RegistrationState is the durable registration bookkeeping. It is the only
// push state that survives restarts.
type RegistrationState struct {
	LastRegisteredAt time.Time `json:"lastRegisteredAt"`
	Token            string    `json:"token,omitempty"`
	DeviceID         string    `json:"deviceId,omitempty"`
}

// StateStore loads and saves RegistrationState under the "registration"
// namespace of a KV store. Writes are last-writer-wins across processes.
type StateStore struct {
	mu     sync.Mutex
	states *kv.TypedKV[RegistrationState]
}

// NewStateStore creates a StateStore on top of store.
func NewStateStore(store kv.KV) *StateStore {
	return &StateStore{states: kv.Scoped[RegistrationState](store, "registration")}
}

// Load returns the stored state, or the zero state when nothing is stored.
func (s *StateStore) Load(ctx context.Context) (RegistrationState, error) {
	st, err := s.states.Get(ctx, stateKey)
	if err != nil {
		if kv.IsNotFound(err) {
			return RegistrationState{}, nil
		}
		return RegistrationState{}, fmt.Errorf("load registration state: %w", err)
	}
	return st, nil
}

// Update applies fn to the stored state and writes the result.
func (s *StateStore) Update(ctx context.Context, fn func(*RegistrationState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return err
	}
	fn(&st)
	if err := s.states.Set(ctx, stateKey, st); err != nil {
		return fmt.Errorf("save registration state: %w", err)
	}
	return nil
}

// DeviceID returns the stored device id, generating and persisting one on
// first use.
func (s *StateStore) DeviceID(ctx context.Context) (string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if st.DeviceID != "" {
		return st.DeviceID, nil
	}

	var id string
	err = s.Update(ctx, func(st *RegistrationState) {
		if st.DeviceID == "" {
			st.DeviceID = uuid.NewString()
		}
		id = st.DeviceID
	})
	return id, err
}
