package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current history file schema version.
const SchemaVersion = 1

// Persistence stores records.
type Persistence interface {
	// Load reads all records from storage.
	Load() ([]Record, error)

	// Append adds a record to storage.
	Append(r Record) error

	// Rewrite replaces the stored records (used after prune).
	Rewrite(rs []Record) error

	// Clear removes all stored records.
	Clear() error

	// Close releases resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"toastui_history_version"`
	CreatedAt     int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence stores records as JSON lines. The file is opened for each
// operation, so a daemon and the CLI can share it.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewJSONLPersistence creates a JSONLPersistence, creating the file with a
// schema header if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	switch {
	case err == nil:
		defer file.Close()
		if err := writeHeader(file); err != nil {
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrExist):
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	return &JSONLPersistence{path: path}, nil
}

// Path returns the file path.
func (p *JSONLPersistence) Path() string { return p.path }

func writeHeader(f *os.File) error {
	data, err := json.Marshal(schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func writeRecords(f *os.File, rs []Record) error {
	w := bufio.NewWriter(f)
	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Load reads all records. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPersistenceClosed
	}

	file, err := os.Open(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p.path, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil || r.ID == "" {
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("error reading %s: %w", p.path, err)
	}
	return records, nil
}

// Append adds a record to the end of the file.
func (p *JSONLPersistence) Append(r Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	file, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p.path, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		if err := writeHeader(file); err != nil {
			return err
		}
	}
	if err := writeRecords(file, []Record{r}); err != nil {
		return err
	}
	return file.Sync()
}

// Rewrite replaces the file contents with rs through a temporary file.
func (p *JSONLPersistence) Rewrite(rs []Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	tmpPath := p.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	if err := writeHeader(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := writeRecords(file, rs); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, p.path)
}

// Clear removes all stored records, keeping the header.
func (p *JSONLPersistence) Clear() error {
	return p.Rewrite(nil)
}

// Close marks the persistence closed.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
