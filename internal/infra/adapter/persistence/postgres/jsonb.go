package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"webwatch/internal/domain/entity"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// jsonb marshals v for a JSONB column. Nil slices are stored as [].
func jsonb(v any) ([]byte, error) {
	if ss, ok := v.([]string); ok && ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// decodeJSON unmarshals a scanned JSONB column; empty columns are left as zero.
func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// translateError maps unique violations onto entity.ErrDuplicate.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", entity.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
