package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fakeyudi/cropguard/internal/api"
)

// ErrNoSession is returned by Load when nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// Keys of the two persisted entries. They are always written and cleared
// together.
const (
	TokenKey = "cropguard_token"
	UserKey  = "cropguard_user"
)

// Store persists a Session. It also serves as the api.Credentials of the
// HTTP client, so a 401 clears what is on disk.
type Store interface {
	Save(s *Session) error
	Load() (*Session, error) // returns ErrNoSession if none exists
	Clear() error
	Token() string
}

// diskStore keeps the two keys as files in the XDG data directory.
type diskStore struct {
	mu  sync.Mutex
	dir string
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/cropguard/ or ~/.local/share/cropguard/
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	return NewStoreAt(dir)
}

// NewStoreAt returns a Store that keeps its files in dir.
func NewStoreAt(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "cropguard"), nil
}

func (d *diskStore) path(key string) string { return filepath.Join(d.dir, key) }

// Save writes the user record and then the token, each atomically.
func (d *diskStore) Save(s *Session) error {
	if s == nil || s.Token == "" {
		return errIncomplete
	}
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := writeAtomic(d.path(UserKey), user); err != nil {
		return err
	}
	if err := writeAtomic(d.path(TokenKey), []byte(s.Token)); err != nil {
		d.clearLocked()
		return err
	}
	return nil
}

// Load reads both keys. A missing key means signed out. A user record that
// does not parse is discarded together with its token.
func (d *diskStore) Load() (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked()
}

func (d *diskStore) loadLocked() (*Session, error) {
	token, err := os.ReadFile(d.path(TokenKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	raw, err := os.ReadFile(d.path(UserKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}

	var user api.User
	if err := json.Unmarshal(raw, &user); err != nil {
		d.clearLocked()
		return nil, ErrNoSession
	}
	s, err := New(strings.TrimSpace(string(token)), user)
	if err != nil {
		d.clearLocked()
		return nil, ErrNoSession
	}
	return s, nil
}

// Clear removes both keys.
func (d *diskStore) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearLocked()
}

func (d *diskStore) clearLocked() error {
	var errs []error
	for _, key := range []string{TokenKey, UserKey} {
		if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or "" when signed out.
func (d *diskStore) Token() string {
	s, err := d.Load()
	if err != nil {
		return ""
	}
	return s.Token
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
