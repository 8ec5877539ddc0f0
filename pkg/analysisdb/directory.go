package analysisdb

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"clarity/analysis-go/pkg/analysis"
)

const analysisSuffix = ".analysis.yml"

type directoryStore struct {
	root string
}

// OpenDirectory returns a database persisted as one YAML document per
// contract under root/<issuer>/<name>.analysis.yml.
func OpenDirectory(root string) (*Database, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("analysisdb: empty directory path")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("analysisdb: resolve %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("analysisdb: create %s: %w", abs, err)
	}
	return New(&directoryStore{root: abs}), nil
}

func (d *directoryStore) path(id analysis.ContractIdentifier) string {
	return filepath.Join(d.root, sanitizeSegment(id.Issuer), sanitizeSegment(id.Name)+analysisSuffix)
}

func (d *directoryStore) Load(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	path := d.path(id)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	loaded, err := DecodeYAML(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if loaded.ContractID != id {
		return nil, fmt.Errorf("%s: stored analysis belongs to %s", path, loaded.ContractID)
	}
	return loaded, nil
}

// Commit encodes every analysis before touching the disk so that an
// encoding failure leaves the store unchanged.
func (d *directoryStore) Commit(analyses []*analysis.ContractAnalysis) error {
	type pendingWrite struct {
		path string
		data []byte
	}
	writes := make([]pendingWrite, 0, len(analyses))
	for _, a := range analyses {
		var buf bytes.Buffer
		if err := EncodeYAML(&buf, a); err != nil {
			return err
		}
		writes = append(writes, pendingWrite{path: d.path(a.ContractID), data: buf.Bytes()})
	}
	for _, w := range writes {
		if err := writeFileAtomic(w.path, w.data); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".analysis-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func sanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "." || value == ".." {
		return "_"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
