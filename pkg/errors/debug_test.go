package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDumpExtractsPgxDetails(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505", ConstraintName: "pending_topups_pkey", TableName: "pending_topups"}
	err := Wrap(CodeDependency, fmt.Errorf("insert: %w", cause), "persist top-up")

	d := Dump(err)
	assert.Equal(t, CodeDependency, d.Code)
	assert.Len(t, d.Chain, 3)

	fields := d.Fields()
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "pending_topups_pkey", fields["pg_constraint"])
	assert.NotContains(t, fields, "pg_detail")
	assert.NotContains(t, fields, "canceled")
}

func TestDumpExtractsPqDetails(t *testing.T) {
	d := Dump(fmt.Errorf("query: %w", &pq.Error{Code: "23514", Table: "pending_topups"}))
	assert.Equal(t, "23514", d.PGCode)
	assert.Equal(t, "pending_topups", d.PGTable)
	assert.Equal(t, CodeInternal, d.Code)
}

func TestDumpFlagsCancellation(t *testing.T) {
	d := Dump(Wrap(CodeConflict, context.Canceled, "checkout preview discarded"))
	assert.True(t, d.Canceled)
	assert.Equal(t, true, d.Fields()["canceled"])
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
