package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMultiRowInsert(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    int
		want    string
	}{
		{
			name:    "single row",
			columns: []string{"a", "b"},
			rows:    1,
			want:    "INSERT INTO t (a, b) VALUES (?, ?)",
		},
		{
			name:    "multiple rows",
			columns: []string{"a", "b", "c"},
			rows:    2,
			want:    "INSERT INTO t (a, b, c) VALUES (?, ?, ?), (?, ?, ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildMultiRowInsert("t", tt.columns, tt.rows))
		})
	}
}
