package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectMemory(t *testing.T, params map[string]any) *DuckDBAdapter {
	t.Helper()
	a := NewDuckDBAdapter()
	require.NoError(t, a.Connect(context.Background(), Config{Path: ":memory:", Params: params}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDuckDBAdapter_ConnectFileBased(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.duckdb")

	a := NewDuckDBAdapter()
	require.NoError(t, a.Connect(context.Background(), Config{Path: dbPath}))
	defer a.Close()

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should be created")
}

func TestDuckDBAdapter_Settings(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t, map[string]any{
		"settings": map[string]any{"threads": 1},
	})

	rows, err := a.Query(ctx, "SELECT current_setting('threads')")
	require.NoError(t, err)
	var threads int64
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&threads))
	require.NoError(t, rows.Close())

	assert.Equal(t, int64(1), threads)
}

func TestDecodeDuckDBParams(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p, err := DecodeDuckDBParams(nil)
		require.NoError(t, err)
		assert.Empty(t, p.Extensions)
		assert.Empty(t, p.Settings)
	})

	t.Run("weakly typed settings", func(t *testing.T) {
		p, err := DecodeDuckDBParams(map[string]any{
			"extensions": []any{"json"},
			"settings":   map[string]any{"threads": 2, "memory_limit": "1GB"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"json"}, p.Extensions)
		assert.Equal(t, "2", p.Settings["threads"])
		assert.Equal(t, "1GB", p.Settings["memory_limit"])
	})

	t.Run("invalid shape", func(t *testing.T) {
		_, err := DecodeDuckDBParams(map[string]any{"settings": []any{1, 2}})
		assert.Error(t, err)
	})
}

func TestSettingValue(t *testing.T) {
	assert.Equal(t, "4", settingValue("4"))
	assert.Equal(t, "true", settingValue("true"))
	assert.Equal(t, "'1GB'", settingValue("1GB"))
	assert.Equal(t, "'it''s'", settingValue("it's"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"Confirmed_Tamil Nadu"`, QuoteIdent("Confirmed_Tamil Nadu"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}

func TestDuckDBAdapter_GetTableMetadata(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t, nil)

	require.NoError(t, a.Exec(ctx, `
		CREATE TABLE population (
			"State" VARCHAR NOT NULL,
			"Population" BIGINT
		)
	`))
	require.NoError(t, a.Exec(ctx, `INSERT INTO population VALUES ('Kerala', 35699443), ('Goa', 1586250)`))

	md, err := a.GetTableMetadata(ctx, "population")
	require.NoError(t, err)

	assert.Equal(t, "main", md.Schema)
	assert.Equal(t, "population", md.Name)
	assert.Equal(t, int64(2), md.RowCount)
	assert.Equal(t, []string{"State", "Population"}, md.ColumnNames())
	assert.True(t, md.HasColumn("Population"))
	assert.False(t, md.HasColumn("population"))
	assert.Equal(t, "BIGINT", md.Columns[1].Type)
	assert.False(t, md.Columns[0].Nullable)
	assert.True(t, md.Columns[1].Nullable)
}

func TestDuckDBAdapter_GetTableMetadata_NotFound(t *testing.T) {
	a := connectMemory(t, nil)

	_, err := a.GetTableMetadata(context.Background(), "nonexistent_table")
	assert.Error(t, err)
}

func TestDuckDBAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t, nil)

	path := writeFile(t, t.TempDir(), "cases.csv", `Date,Status,Kerala,Goa
14-03-2020,Confirmed,1,0
14-03-2020,Recovered,0,0
15-03-2020,Confirmed,3,2
`)

	require.NoError(t, a.LoadCSV(ctx, "raw_cases", path, CSVOptions{AllVarchar: true}))

	md, err := a.GetTableMetadata(ctx, "raw_cases")
	require.NoError(t, err)
	assert.Equal(t, int64(3), md.RowCount)
	assert.Equal(t, []string{"Date", "Status", "Kerala", "Goa"}, md.ColumnNames())
	for _, c := range md.Columns {
		assert.Equal(t, "VARCHAR", c.Type, "column %s must stay text", c.Name)
	}
}

func TestDuckDBAdapter_LoadCSV_Sniffed(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t, nil)

	path := writeFile(t, t.TempDir(), "population.csv", "State,Population\nGoa,1586250\nKerala,35699443\n")
	require.NoError(t, a.LoadCSV(ctx, "raw_population", path, CSVOptions{}))

	md, err := a.GetTableMetadata(ctx, "raw_population")
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR", md.Columns[0].Type)
	assert.Equal(t, "BIGINT", md.Columns[1].Type)
}

func TestDuckDBAdapter_LoadCSV_Reload(t *testing.T) {
	ctx := context.Background()
	a := connectMemory(t, nil)
	dir := t.TempDir()

	require.NoError(t, a.LoadCSV(ctx, "raw_population", writeFile(t, dir, "p1.csv", "State,Population\nGoa,1\nKerala,2\n"), CSVOptions{}))
	require.NoError(t, a.LoadCSV(ctx, "raw_population", writeFile(t, dir, "p2.csv", "State,Population\nGoa,1\n"), CSVOptions{}))

	md, err := a.GetTableMetadata(ctx, "raw_population")
	require.NoError(t, err)
	assert.Equal(t, int64(1), md.RowCount)
}

func TestDuckDBAdapter_LoadCSV_MissingFile(t *testing.T) {
	a := connectMemory(t, nil)

	err := a.LoadCSV(context.Background(), "raw_cases", filepath.Join(t.TempDir(), "absent.csv"), CSVOptions{})
	assert.Error(t, err)
}

func TestDuckDBAdapter_WithoutConnect(t *testing.T) {
	ctx := context.Background()
	a := NewDuckDBAdapter()

	assert.Error(t, a.Exec(ctx, "SELECT 1"))
	_, err := a.Query(ctx, "SELECT 1")
	assert.Error(t, err)
	assert.Error(t, a.LoadCSV(ctx, "t", "x.csv", CSVOptions{}))

	// Close without connect should not error
	assert.NoError(t, a.Close())
}
