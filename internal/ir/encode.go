package ir

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the snapshot format changes
const snapshotSchemaVersion uint16 = 1

type snapshotPayload struct {
	Schema uint16
	Funcs  []*Func
}

// Snapshot serializes a module for caching or external inspection.
func Snapshot(m *Module) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	funcs := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	payload := snapshotPayload{
		Schema: snapshotSchemaVersion,
		Funcs:  funcs,
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("ir: encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a module from a snapshot. Snapshots written by
// a different schema version are rejected.
func DecodeSnapshot(data []byte) (*Module, error) {
	var payload snapshotPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("ir: decoding snapshot: %w", err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("ir: snapshot schema mismatch: got=%d want=%d", payload.Schema, snapshotSchemaVersion)
	}
	m := NewModule()
	for _, f := range payload.Funcs {
		m.Add(f)
	}
	return m, nil
}
