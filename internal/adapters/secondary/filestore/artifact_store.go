package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/estimator"
)

// ArtifactExt is the extension listed as model artifacts.
const ArtifactExt = ".model.json"

type artifactStore struct {
	dir string
}

// NewArtifactStore serves artifacts from a flat directory of
// {location}_{algorithm}_{timestamp}.model.json files.
func NewArtifactStore(dir string) ports.ArtifactStore {
	return &artifactStore{dir: dir}
}

func (s *artifactStore) Exists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

func (s *artifactStore) List(ctx context.Context) ([]ports.ArtifactRef, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list model dir: %w", err)
	}

	var refs []ports.ArtifactRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ArtifactExt) {
			continue
		}
		key, ts, err := domain.ParseArtifactFileName(strings.TrimSuffix(name, ArtifactExt))
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("skipping unrecognized artifact file")
			continue
		}
		refs = append(refs, ports.ArtifactRef{
			Name:      name,
			Path:      filepath.Join(s.dir, name),
			Key:       key,
			Timestamp: ts,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (s *artifactStore) Load(ctx context.Context, ref ports.ArtifactRef) (*domain.ModelArtifact, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	artifact, err := estimator.Decode(data)
	if err != nil {
		return nil, err
	}
	if artifact.Key == (domain.ArtifactKey{}) {
		artifact.Key = ref.Key
	}
	if artifact.Timestamp == "" {
		artifact.Timestamp = ref.Timestamp
	}
	if artifact.ID == "" {
		artifact.ID = ref.Name
	}
	artifact.Path = ref.Path
	return artifact, nil
}

func (s *artifactStore) Save(ctx context.Context, artifact *domain.ModelArtifact) (ports.ArtifactRef, error) {
	data, err := estimator.Encode(artifact)
	if err != nil {
		return ports.ArtifactRef{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ports.ArtifactRef{}, fmt.Errorf("create model dir: %w", err)
	}

	name := domain.ArtifactFileName(artifact.Key, artifact.Timestamp, ArtifactExt)
	path := filepath.Join(s.dir, name)
	if err := writeFileAtomic(path, data); err != nil {
		return ports.ArtifactRef{}, fmt.Errorf("write artifact %s: %w", name, err)
	}
	artifact.Path = path
	return ports.ArtifactRef{Name: name, Path: path, Key: artifact.Key, Timestamp: artifact.Timestamp}, nil
}

// writeFileAtomic writes beside the target and renames over it, so readers
// never see a partial blob.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
