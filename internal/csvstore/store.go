package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/2beens/dailyscore/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Store reads and writes whole CSV files. Every save is a full-file overwrite
// through a temp file and rename, serialized per file path.
type Store struct {
	locks sync.Map // path -> *sync.Mutex
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) lock(path string) func() {
	m, _ := s.locks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Load reads the file at path and normalizes it to the schema.
// A missing or unparseable file yields an empty table; other I/O errors are returned.
func (s *Store) Load(ctx context.Context, path string, schema Schema) (_ *Table, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "csvstore.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("file.path", path))

	unlock := s.lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("csv store: [%s] does not exist yet, starting empty", path)
			return NewTable(schema), nil
		}
		return nil, fmt.Errorf("read [%s]: %w", path, err)
	}

	table, err := Decode(bytes.NewReader(data), schema)
	if err != nil {
		log.Warnf("csv store: [%s] is corrupt, treating it as empty: %s", path, err)
		return NewTable(schema), nil
	}

	if len(table.Added) > 0 {
		log.Infof("csv store: [%s] migrated to %s v%d, added columns %v", path, schema.Name, schema.Version, table.Added)
	}

	return table, nil
}

// Save atomically replaces the file at path with the table contents.
func (s *Store) Save(ctx context.Context, path string, table *Table) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "csvstore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("file.path", path),
		attribute.Int("rows", len(table.Rows)),
	)

	var buf bytes.Buffer
	if err := Encode(&buf, table); err != nil {
		return fmt.Errorf("encode [%s]: %w", path, err)
	}

	unlock := s.lock(path)
	defer unlock()

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write [%s]: %w", path, err)
	}

	log.Tracef("csv store: saved %d rows to [%s]", len(table.Rows), path)
	return nil
}

// Snapshot is the raw content of a file at some point, used to undo a save.
type Snapshot struct {
	path    string
	data    []byte
	existed bool
}

func (s *Store) Snapshot(path string) (*Snapshot, error) {
	unlock := s.lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{path: path}, nil
		}
		return nil, fmt.Errorf("snapshot [%s]: %w", path, err)
	}
	return &Snapshot{path: path, data: data, existed: true}, nil
}

// Restore puts the file back into the snapshotted state.
func (s *Store) Restore(snap *Snapshot) error {
	unlock := s.lock(snap.path)
	defer unlock()

	if !snap.existed {
		if err := os.Remove(snap.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("restore [%s]: %w", snap.path, err)
		}
		return nil
	}
	if err := writeFileAtomic(snap.path, snap.data); err != nil {
		return fmt.Errorf("restore [%s]: %w", snap.path, err)
	}
	return nil
}

// Decode parses CSV content with a header row.
func Decode(r io.Reader, schema Schema) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return schema.Normalize(schema.Header(), nil), nil
	}

	return schema.Normalize(records[0], records[1:]), nil
}

// Encode writes the header and all rows in schema column order.
func Encode(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Schema.Header()); err != nil {
		return err
	}

	record := make([]string, len(table.Schema.Columns))
	for _, row := range table.Rows {
		for i, c := range table.Schema.Columns {
			v, ok := row[c.Name]
			if !ok {
				v = c.Default
			}
			record[i] = v
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
