package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steentj/dho-sub001/internal/core"
)

func TestOperatorSQL(t *testing.T) {
	tests := []struct {
		op   core.DistanceOperator
		want string
	}{
		{core.DistanceCosine, "<=>"},
		{core.DistanceL1, "<+>"},
		{core.DistanceL2, "<->"},
		{core.DistanceInnerProduct, "<#>"},
		{"", "<=>"},
	}
	for _, tt := range tests {
		got, err := operatorSQL(tt.op)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("operatorSQL(%q) = %q, want %q", tt.op, got, tt.want)
		}
	}

	_, err := operatorSQL("jaccard")
	assert.ErrorIs(t, err, core.ErrUnknownDistanceOperator)
}

func TestSearchSQL(t *testing.T) {
	q, err := searchSQL("chunks_nomic", core.DistanceL2)
	require.NoError(t, err)

	assert.Contains(t, q, `FROM "chunks_nomic" c`)
	assert.Contains(t, q, "c.embedding <-> $1 AS distance")
	assert.Contains(t, q, "length(trim(c.chunk)) > $3")
	assert.Contains(t, q, "<= $4")
	assert.Contains(t, q, "ORDER BY distance ASC")
	assert.NotContains(t, q, "LIMIT")
}

func TestTableNamesAreQuoted(t *testing.T) {
	ddl := createChunkTableSQL(`chunks"; DROP TABLE books; --`, 768)
	assert.Contains(t, ddl, `"chunks""; DROP TABLE books; --"`)
	assert.Contains(t, ddl, "vector(768)")
	assert.Contains(t, ddl, "UNIQUE (book_id, provider, page, ordinal)")

	assert.True(t, strings.HasPrefix(strings.TrimSpace(insertChunkSQL("chunks")), `INSERT INTO "chunks"`))
	assert.Contains(t, hasEmbeddingsSQL("chunks_dummy"), `FROM "chunks_dummy" c`)
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN("postgres://u:p@db:5432/books", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/books", dsn)

	cert := filepath.Join(t.TempDir(), "root.crt")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))

	dsn, err = buildDSN("postgres://u:p@db:5432/books", cert)
	require.NoError(t, err)
	assert.Contains(t, dsn, "sslmode=verify-ca")
	assert.Contains(t, dsn, "sslrootcert=")

	_, err = buildDSN("postgres://u:p@db:5432/books", filepath.Join(t.TempDir(), "missing.crt"))
	assert.Error(t, err)
}
