package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Winter-Soldier02/FreQ/core"
)

// MarshalResultSet encodes rs as a JSON array of
// {question, similar_variants, frequency} records. rs is validated first so
// an inconsistent snapshot is never written.
func MarshalResultSet(rs core.ResultSet) ([]byte, error) {
	if err := core.ValidateResultSet(rs); err != nil {
		return nil, err
	}
	if rs == nil {
		rs = core.ResultSet{}
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// MarshalResultSetIndent is MarshalResultSet with indentation, for export.
func MarshalResultSetIndent(rs core.ResultSet) ([]byte, error) {
	data, err := MarshalResultSet(rs)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalResultSet decodes a snapshot. Empty input decodes to an empty
// ResultSet.
func UnmarshalResultSet(data []byte) (core.ResultSet, error) {
	rs := core.ResultSet{}
	if len(bytes.TrimSpace(data)) == 0 {
		return rs, nil
	}
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if rs == nil {
		rs = core.ResultSet{}
	}
	return rs, nil
}
