package pgvectorDB

import (
	"testing"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	assert.Equal(t, config.PGVectorTable, tableName(config.PGVectorSettings{}))
	assert.Equal(t, "chunks", tableName(config.PGVectorSettings{Table: "chunks"}))
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL(pgx.Identifier{"my docs"}.Sanitize(), 384)
	assert.Contains(t, sql, `"my docs"`)
	assert.Contains(t, sql, "vector(384)")
	assert.Contains(t, sql, "seq BIGSERIAL PRIMARY KEY")
}

func TestMetadataRoundTripKeepsNumbersComparable(t *testing.T) {
	raw, err := encodeMetadata(commonModels.Metadata{
		commonModels.MetaSource:     "a.pdf",
		commonModels.MetaChunkIndex: 2,
	})
	require.NoError(t, err)

	meta, err := decodeMetadata(raw)
	require.NoError(t, err)
	assert.True(t, commonModels.Filter{commonModels.MetaChunkIndex: 2}.Matches(meta))
	assert.Equal(t, "a.pdf", meta.Source())
}

func TestDecodeEmptyMetadata(t *testing.T) {
	meta, err := decodeMetadata(nil)
	require.NoError(t, err)
	assert.NotNil(t, meta)

	_, err = decodeMetadata([]byte("{not json"))
	assert.Error(t, err)
}

func TestNewStorageRequiresDSN(t *testing.T) {
	_, err := NewStorage(t.Context(), config.PGVectorSettings{}, 8)
	assert.Error(t, err)
}
