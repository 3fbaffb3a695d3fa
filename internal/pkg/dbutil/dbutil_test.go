package dbutil

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM users WHERE email = ?", []interface{}{"a@b.c"})
	require.Equal(t, "SELECT id FROM users WHERE email = $1", query)
	require.Equal(t, []interface{}{"a@b.c"}, args)
}

func TestFinalizeRewritesLimitOffset(t *testing.T) {
	query, args := Finalize(
		"SELECT id FROM users WHERE state = ? ORDER BY ctime DESC LIMIT ?,?",
		[]interface{}{1, uint(20), uint(10)},
	)
	require.Equal(t, "SELECT id FROM users WHERE state = $1 ORDER BY ctime DESC LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{1, uint(10), uint(20)}, args)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	require.False(t, IsUniqueViolation(nil))
}
