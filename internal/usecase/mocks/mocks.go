package mocks

import (
	"context"
	"strconv"
	"sync"

	"github.com/iho/ledgercheck/internal/domain"
)

// SequenceIDGenerator is a deterministic IDGenerator for tests.
type SequenceIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

func (m *SequenceIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MemoryLedgerStore is an in-memory LedgerStore.
type MemoryLedgerStore struct {
	mu     sync.Mutex
	ledger *domain.Ledger
	saves  int

	LoadFunc func(ctx context.Context) (*domain.Ledger, error)
	SaveFunc func(ctx context.Context, ledger *domain.Ledger) error
}

func NewMemoryLedgerStore(ledger *domain.Ledger) *MemoryLedgerStore {
	return &MemoryLedgerStore{ledger: ledger}
}

func (m *MemoryLedgerStore) Load(ctx context.Context) (*domain.Ledger, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger, nil
}

func (m *MemoryLedgerStore) Save(ctx context.Context, ledger *domain.Ledger) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ledger)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = ledger
	m.saves++
	return nil
}

// Saves returns how often Save stored a ledger.
func (m *MemoryLedgerStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
