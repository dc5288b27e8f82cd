package db

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/steentj/dho-sub001/internal/core"
)

// operatorSQL maps a distance operator onto its pgvector operator.
func operatorSQL(op core.DistanceOperator) (string, error) {
	switch op {
	case core.DistanceCosine, "":
		return "<=>", nil
	case core.DistanceL1:
		return "<+>", nil
	case core.DistanceL2:
		return "<->", nil
	case core.DistanceInnerProduct:
		// pgvector returns the negative inner product.
		return "<#>", nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownDistanceOperator, op)
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func createChunkTableSQL(table string, dim int) string {
	t := quoteIdent(table)
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id          SERIAL PRIMARY KEY,
			book_id     INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			page        INTEGER NOT NULL,
			ordinal     INTEGER NOT NULL,
			chunk       TEXT NOT NULL,
			embedding   vector(%[2]d) NOT NULL,
			provider    TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (book_id, provider, page, ordinal)
		);
		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (book_id, provider);
	`, t, dim, quoteIdent(table+"_book_provider_idx"))
}

func insertChunkSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (book_id, page, ordinal, chunk, embedding, provider)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, quoteIdent(table))
}

func providerHasChunksSQL(table string) string {
	return fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE book_id = $1 AND provider = $2)`, quoteIdent(table))
}

func hasEmbeddingsSQL(table string) string {
	return fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s c
			JOIN books b ON b.id = c.book_id
			WHERE b.url = $1 AND c.provider = $2
		)
	`, quoteIdent(table))
}

// searchSQL selects every chunk of the provider within the threshold,
// nearest first. $1 vector, $2 provider, $3 min length, $4 threshold.
func searchSQL(table string, op core.DistanceOperator) (string, error) {
	sqlOp, err := operatorSQL(op)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
		SELECT b.url, b.title, b.author, c.page, c.chunk, c.embedding %[2]s $1 AS distance
		FROM %[1]s c
		JOIN books b ON b.id = c.book_id
		WHERE c.provider = $2
		  AND length(trim(c.chunk)) > $3
		  AND (c.embedding %[2]s $1) <= $4
		ORDER BY distance ASC
	`, quoteIdent(table), sqlOp), nil
}
