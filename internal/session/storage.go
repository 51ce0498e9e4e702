package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// TokenStorage is the durable slot the token pair is persisted to. Only
// tokens are ever stored; the user is re-fetched on every boot.
type TokenStorage interface {
	Load() (accessToken, refreshToken string, err error)
	Save(accessToken, refreshToken string) error
	Clear() error
}

type tokenFile struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FileStorage keeps the token pair in a small JSON file, the desktop
// analogue of the browser's two localStorage slots. Last writer wins;
// writes only happen from the single-threaded session mutation paths.
type FileStorage struct {
	Path string
}

func (f *FileStorage) Load() (string, string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	var t tokenFile
	if err := json.Unmarshal(data, &t); err != nil {
		return "", "", err
	}
	return t.AccessToken, t.RefreshToken, nil
}

func (f *FileStorage) Save(access, refresh string) error {
	data, err := json.Marshal(tokenFile{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemStorage is a TokenStorage for tests and the mock backend.
type MemStorage struct {
	mu              sync.Mutex
	access, refresh string
}

func (m *MemStorage) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh, nil
}

func (m *MemStorage) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	return nil
}

func (m *MemStorage) Clear() error {
	return m.Save("", "")
}
