package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSerializationFailure(tt.err); got != tt.want {
				t.Errorf("isSerializationFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTxOptions(t *testing.T) {
	opts := DefaultTxOptions()
	if opts.IsolationLevel != pgx.ReadCommitted {
		t.Errorf("default isolation must be read committed")
	}
	if opts.StatementTimeout <= 0 {
		t.Errorf("default options must carry a statement timeout")
	}

	serializable := SerializableTxOptions()
	if serializable.IsolationLevel != pgx.Serializable {
		t.Errorf("serializable options must use serializable isolation")
	}
}
