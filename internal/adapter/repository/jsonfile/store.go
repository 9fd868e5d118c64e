package jsonfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/iho/ledgercheck/internal/domain"
)

// Store implements usecase.LedgerStore on a single JSON file.
type Store struct {
	path    string
	ids     domain.IDGenerator
	retrier *Retrier
	logger  zerolog.Logger
}

// NewStore creates a store for the file at path.
func NewStore(path string, ids domain.IDGenerator, logger zerolog.Logger) *Store {
	return &Store{
		path:    path,
		ids:     ids,
		retrier: NewRetrier(logger),
		logger:  logger,
	}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger file.
func (s *Store) Load(ctx context.Context) (*domain.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	l, err := Decode(f, s.ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	s.logger.Debug().
		Str("path", s.path).
		Int("accounts", len(l.Accounts)).
		Int("portfolios", len(l.Portfolios)).
		Int("securities", len(l.Securities)).
		Msg("ledger loaded")

	return l, nil
}

// Save writes the ledger to a temporary file next to the target and renames
// it into place.
func (s *Store) Save(ctx context.Context, l *domain.Ledger) error {
	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		return err
	}

	err := s.retrier.Retry(ctx, func() error {
		return writeFileAtomic(s.path, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("bytes", buf.Len()).Msg("ledger saved")
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
