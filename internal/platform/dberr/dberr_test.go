// Copyright (c) 2026 Backalley. All rights reserved.

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/dberr"
)

/*
TestWrap_Classification maps the three database error classes onto their
application errors.
*/
func TestWrap_Classification(t *testing.T) {
	t.Run("nil_passes_through", func(t *testing.T) {
		assert.NoError(t, dberr.Wrap(nil, "noop"))
	})

	t.Run("no_rows_is_not_found", func(t *testing.T) {
		err := dberr.Wrap(pgx.ErrNoRows, "find author by id")
		assert.ErrorIs(t, err, dberr.ErrNotFound)
	})

	t.Run("unique_violation_is_conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		err := dberr.Wrap(pgErr, "insert invite")
		assert.ErrorIs(t, err, dberr.ErrDuplicate)
	})
}

/*
TestWrap_InternalCarriesAction verifies that an unclassified error becomes an
internal error whose cause names the failed operation. The label is for the
server log only; the client-facing message stays generic.
*/
func TestWrap_InternalCarriesAction(t *testing.T) {
	underlying := errors.New("connection reset")

	err := dberr.Wrap(underlying, "redeem invite")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
	assert.Equal(t, "An unexpected error occurred", ae.Message)

	require.NotNil(t, ae.Cause)
	assert.Contains(t, ae.Cause.Error(), "redeem invite")
	assert.ErrorIs(t, ae.Cause, underlying)
}
