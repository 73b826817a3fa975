package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPublicReadStatementAddsWildcard(t *testing.T) {
	updated, changed, err := withPublicReadStatement("", "scans")
	require.NoError(t, err)
	assert.True(t, changed)

	var policy bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(updated), &policy))
	require.Len(t, policy.Statement, 1)
	assert.Equal(t, []string{"arn:aws:s3:::scans/*"}, policy.Statement[0].Resource)
	assert.Equal(t, []string{"s3:GetObject"}, policy.Statement[0].Action)
	assert.Equal(t, "Allow", policy.Statement[0].Effect)
}

func TestWithPublicReadStatementIsIdempotent(t *testing.T) {
	first, changed, err := withPublicReadStatement("", "scans")
	require.NoError(t, err)
	require.True(t, changed)

	second, changed, err := withPublicReadStatement(first, "scans")
	require.NoError(t, err)
	assert.False(t, changed, "an installed grant is never re-applied")
	assert.Equal(t, first, second)
}

func TestWithPublicReadStatementPreservesExistingStatements(t *testing.T) {
	existing := `{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Principal":{"AWS":"*"},"Action":["s3:DeleteObject"],"Resource":["arn:aws:s3:::scans/archive/*"]}]}`

	updated, changed, err := withPublicReadStatement(existing, "scans")
	require.NoError(t, err)
	assert.True(t, changed)

	var policy bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(updated), &policy))
	require.Len(t, policy.Statement, 2)
	assert.Equal(t, "Deny", policy.Statement[0].Effect, "unrelated statements survive")
	assert.Equal(t, []string{"arn:aws:s3:::scans/*"}, policy.Statement[1].Resource)
}

func TestWithPublicReadStatementRejectsMalformedPolicy(t *testing.T) {
	_, _, err := withPublicReadStatement("not json", "scans")
	assert.Error(t, err)
}
