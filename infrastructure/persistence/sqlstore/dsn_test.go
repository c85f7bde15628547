package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"bare path", "provenance.db", "provenance.db?_pragma=foreign_keys(1)"},
		{"memory", ":memory:", ":memory:?_pragma=foreign_keys(1)"},
		{"existing query", "file:provenance.db?cache=shared", "file:provenance.db?cache=shared&_pragma=foreign_keys(1)"},
		{"already enabled", "file::memory:?_pragma=foreign_keys(1)", "file::memory:?_pragma=foreign_keys(1)"},
		{"explicitly disabled", "file:x.db?_pragma=foreign_keys(0)", "file:x.db?_pragma=foreign_keys(0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
		})
	}
}
