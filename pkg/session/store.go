package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"igsession/pkg/browser"
	"igsession/pkg/logger"
)

// Record is a persisted cookie set enabling reuse of an authenticated
// session without a fresh login. One record per username; a later save
// overwrites the earlier one.
type Record struct {
	Username string           `json:"username"`
	Cookies  []browser.Cookie `json:"cookies"`
	SavedAt  time.Time        `json:"saved_at"`
}

// Store persists and retrieves session records keyed by username
type Store interface {
	// Save writes or overwrites the record for a username
	Save(username string, cookies []browser.Cookie) error

	// Load returns previously saved cookies. The boolean is false when no
	// record exists or the stored record is structurally invalid.
	Load(username string) ([]browser.Cookie, bool)

	// Exists checks whether a record is stored for the username
	Exists(username string) bool

	// Clear removes the record for a username
	Clear(username string) error
}

// FileStore implements Store with one JSON file per username. Writes go
// through a temp file and an atomic rename so concurrent readers never
// observe a partial record; a per-username mutex serializes writers.
type FileStore struct {
	dir    string
	logger logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a session store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &FileStore{
		dir:    dir,
		logger: logger.GetLogger(),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Save writes or overwrites the session record for a username
func (s *FileStore) Save(username string, cookies []browser.Cookie) error {
	lock := s.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	record := Record{
		Username: username,
		Cookies:  cookies,
		SavedAt:  time.Now(),
	}

	path := s.recordPath(username)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&record); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	s.logger.InfoWithFields("session saved", map[string]interface{}{
		"username": username,
		"cookies":  len(cookies),
	})

	return nil
}

// Load returns the stored cookies for a username. A missing or corrupt
// record is reported as absent, not as an error.
func (s *FileStore) Load(username string) ([]browser.Cookie, bool) {
	lock := s.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(s.recordPath(username))
	if err != nil {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.WarnWithFields("discarding corrupt session record", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil, false
	}

	if record.Username != username || len(record.Cookies) == 0 {
		return nil, false
	}

	return record.Cookies, true
}

// Exists checks whether a record file is present for the username
func (s *FileStore) Exists(username string) bool {
	_, err := os.Stat(s.recordPath(username))
	return err == nil
}

// Clear removes the record for a username. Clearing a missing record is
// not an error.
func (s *FileStore) Clear(username string) error {
	lock := s.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.recordPath(username)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// List returns every stored record, for CLI display
func (s *FileStore) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}

		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// lockFor returns the mutex guarding a username's record
func (s *FileStore) lockFor(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[username]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[username] = lock
	}
	return lock
}

// recordPath builds the file path for a username's record
func (s *FileStore) recordPath(username string) string {
	return filepath.Join(s.dir, fmt.Sprintf("session_%s.json", sanitizeUsername(username)))
}

// sanitizeUsername strips path separators so a username can never escape
// the session directory
func sanitizeUsername(username string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(username)
}
