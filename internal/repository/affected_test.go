package repository

import (
	"errors"
	"testing"
)

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestAffected(t *testing.T) {
	execErr := errors.New("connection reset")
	countErr := errors.New("driver cannot count rows")

	tests := []struct {
		name     string
		result   stubResult
		execErr  error
		wantRows int
		wantErr  error
	}{
		{"rows counted", stubResult{rows: 3}, nil, 3, nil},
		{"exec error wins", stubResult{rows: 3}, execErr, 0, execErr},
		{"count error returned", stubResult{rows: 1, err: countErr}, nil, 0, countErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := affected(tt.result, tt.execErr)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if rows != tt.wantRows {
				t.Errorf("Expected %d rows, got %d", tt.wantRows, rows)
			}
		})
	}
}
