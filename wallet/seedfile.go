package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SeedFileName is the sealed seed's file name inside the data directory.
const SeedFileName = "payout.seed"

// WriteSeedFile seals seed and writes it to path with 0600 permissions.
// An existing file is never overwritten.
func WriteSeedFile(path string, seed []byte, password string) error {
	sealed, err := SealSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrSeedFileExists, path)
		}
		return fmt.Errorf("wallet: create seed file: %w", err)
	}
	if _, err := f.Write(sealed); err != nil {
		_ = f.Close()
		return fmt.Errorf("wallet: write seed file: %w", err)
	}
	return f.Close()
}

// ReadSeedFile reads and opens a sealed seed.
func ReadSeedFile(path, password string) ([]byte, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read seed file: %w", err)
	}
	return OpenSeed(sealed, password)
}
