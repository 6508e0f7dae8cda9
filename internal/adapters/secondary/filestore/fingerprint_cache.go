package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

type fingerprintCache struct {
	path string
}

// NewFingerprintCache keeps the last snapshot as a JSON file. Concurrent
// writers race benignly: the last rename wins.
func NewFingerprintCache(path string) ports.FingerprintCache {
	return &fingerprintCache{path: path}
}

func (c *fingerprintCache) Load(ctx context.Context) (*domain.EnvironmentFingerprint, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fingerprint cache: %w", err)
	}

	var fp domain.EnvironmentFingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, fmt.Errorf("decode fingerprint cache: %w", err)
	}
	return &fp, nil
}

func (c *fingerprintCache) Save(ctx context.Context, fp *domain.EnvironmentFingerprint) error {
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fingerprint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create fingerprint cache dir: %w", err)
	}
	return writeFileAtomic(c.path, data)
}
