package jsonstore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON-backed storage. Single file, human-readable, portable.
// The whole file is rewritten on every change.

const DefaultFileName = "records.json"

//go:embed records.schema.json
var fileSchema []byte

const schemaURL = "records.schema.json"

type file struct {
	Version int                       `json:"version"`
	Tables  map[string][]model.Record `json:"tables"`
}

type Store struct {
	path string

	mu   sync.Mutex
	data file
}

// Open reads the file at path; a missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: file{Version: 1, Tables: map[string][]model.Record{}}}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := validate(b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if s.data.Tables == nil {
		s.data.Tables = map[string][]model.Record{}
	}
	return s, nil
}

func validate(b []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(fileSchema)); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("invalid records file: %s", firstCause(ve))
		}
		return fmt.Errorf("invalid records file: %w", err)
	}
	return nil
}

// firstCause digs out the innermost message, which names the bad field.
func firstCause(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load(_ context.Context, tableID string) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.data.Tables[tableID]
	out := make([]model.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, tableID string, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.data.Tables[tableID]
	recs := make([]model.Record, 0, len(old)+1)
	replaced := false
	for _, r := range old {
		if r.ID == rec.ID {
			r = rec.Clone()
			replaced = true
		}
		recs = append(recs, r)
	}
	if !replaced {
		recs = append(recs, rec.Clone())
	}
	return s.commitLocked(tableID, recs)
}

func (s *Store) Delete(_ context.Context, tableID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.data.Tables[tableID]
	recs := make([]model.Record, 0, len(old))
	for _, r := range old {
		if r.ID != recordID {
			recs = append(recs, r)
		}
	}
	if len(recs) == len(old) {
		return nil
	}
	return s.commitLocked(tableID, recs)
}

// commitLocked writes the file with tableID replaced by recs. Memory is
// only updated once the file is written.
func (s *Store) commitLocked(tableID string, recs []model.Record) error {
	next := file{Version: s.data.Version, Tables: make(map[string][]model.Record, len(s.data.Tables)+1)}
	for id, t := range s.data.Tables {
		next.Tables[id] = t
	}
	next.Tables[tableID] = recs
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) save(data file) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
