package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassifiers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	foreignKey := &pgconn.PgError{Code: "23503"}
	other := &pgconn.PgError{Code: "40001"}

	tests := []struct {
		name      string
		err       error
		duplicate bool
		noRows    bool
		fk        bool
	}{
		{"unique violation", unique, true, false, false},
		{"wrapped unique violation", fmt.Errorf("create grant: %w", unique), true, false, false},
		{"foreign key violation", foreignKey, false, false, true},
		{"no rows", pgx.ErrNoRows, false, true, false},
		{"wrapped no rows", fmt.Errorf("get folder: %w", pgx.ErrNoRows), false, true, false},
		{"other pg error", other, false, false, false},
		{"plain error", errors.New("connection reset"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPgDuplicateError(tt.err); got != tt.duplicate {
				t.Errorf("IsPgDuplicateError() = %v, want %v", got, tt.duplicate)
			}
			if got := IsPgNoRowsError(tt.err); got != tt.noRows {
				t.Errorf("IsPgNoRowsError() = %v, want %v", got, tt.noRows)
			}
			if got := IsPgForeignKeyError(tt.err); got != tt.fk {
				t.Errorf("IsPgForeignKeyError() = %v, want %v", got, tt.fk)
			}
		})
	}
}
