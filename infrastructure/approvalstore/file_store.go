// Package approvalstore persists user approvals of dangerous skill permissions.
package approvalstore

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/reglet-dev/skillguard/domain/ports"
	"gopkg.in/yaml.v3"
)

var _ ports.ApprovalStore = (*FileStore)(nil)

type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return fileStoreConfig{
		path:     filepath.Join(home, ".skillguard", "approvals.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the approvals file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.path = path
	}
}

// WithFilePermissions sets the mode of the approvals file. Default is 0o600.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the mode of created parent directories. Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// approvalFile is the on-disk layout.
type approvalFile struct {
	Skills map[string][]string `yaml:"skills"`
}

// FileStore keeps approvals in a YAML file keyed by skill name.
type FileStore struct {
	mu     sync.Mutex
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load returns approved permissions keyed by skill name. A missing file is
// an empty store.
func (s *FileStore) Load() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Skills, nil
}

// Approve adds permissions to the approvals of skill, skipping duplicates.
func (s *FileStore) Approve(skill string, permissions []string) error {
	if skill == "" {
		return fmt.Errorf("approve: skill name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	current := f.Skills[skill]
	for _, p := range permissions {
		if !slices.Contains(current, p) {
			current = append(current, p)
		}
	}
	slices.Sort(current)
	f.Skills[skill] = current
	return s.write(f)
}

// Revoke removes every approval recorded for skill.
func (s *FileStore) Revoke(skill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := f.Skills[skill]; !ok {
		return nil
	}
	delete(f.Skills, skill)
	return s.write(f)
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}

func (s *FileStore) read() (*approvalFile, error) {
	f := &approvalFile{}
	data, err := os.ReadFile(s.config.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read approval store: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse approval store: %w", err)
		}
	}
	if f.Skills == nil {
		f.Skills = make(map[string][]string)
	}
	return f, nil
}

func (s *FileStore) write(f *approvalFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal approvals: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.config.path), s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create approval store directory: %w", err)
	}
	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write approval store: %w", err)
	}
	return nil
}
