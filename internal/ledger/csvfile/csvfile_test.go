package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeiro/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2024, 1, 5), Description: "Salário", Amount: core.Money{Cents: 100000}, Category: core.Other, Kind: core.Income},
		{Date: core.NewDate(2024, 1, 9), Description: "mercado, feira", Amount: core.Money{Cents: 30050}, Category: core.Food, Kind: core.Expense},
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "none.csv"))
	records, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadEmptyAndHeaderOnlyFiles(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.csv":  "",
		"header.csv": "Data,Descrição,Valor,Categoria,Tipo\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		records, err := New(path).Load(context.Background())
		require.NoError(t, err, name)
		assert.Empty(t, records, name)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", DefaultPath)
	r := New(path)
	require.NoError(t, r.Save(context.Background(), sample()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Data,Descrição,Valor,Categoria,Tipo\n"+
			"2024-01-05,Salário,1000.00,Other,Income\n"+
			"2024-01-09,\"mercado, feira\",300.50,Food,Expense\n",
		string(data))

	records, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample(), records)

	again, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestLoadLegacyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv")
	content := "\ufeffData,Descrição,Valor,Categoria,Tipo\n" +
		"2023-12-01 00:00:00,Aluguel,1500.0,Moradia,Saída\n" +
		"2023-12-02,,2000,Outros,Entrada\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := New(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.Housing, records[0].Category)
	assert.Equal(t, core.Expense, records[0].Kind)
	assert.Equal(t, int64(150000), records[0].Amount.Cents)
	assert.Equal(t, "2023-12-01", records[0].Date.String())
	assert.Equal(t, core.Income, records[1].Kind)
	assert.Equal(t, "", records[1].Description)
}

func TestLoadMalformedFile(t *testing.T) {
	cases := map[string]string{
		"wrong header": "date,desc,value,cat,type\n2024-01-01,x,1,Food,Expense\n",
		"bad amount":   "Data,Descrição,Valor,Categoria,Tipo\n2024-01-01,x,abc,Food,Expense\n",
		"bad date":     "Data,Descrição,Valor,Categoria,Tipo\n01/02/2024,x,1,Food,Expense\n",
		"bad category": "Data,Descrição,Valor,Categoria,Tipo\n2024-01-01,x,1,Pets,Expense\n",
		"short row":    "Data,Descrição,Valor,Categoria,Tipo\n2024-01-01,x,1\n",
		"negative":     "Data,Descrição,Valor,Categoria,Tipo\n2024-01-01,x,-1,Food,Expense\n",
	}
	dir := t.TempDir()
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".csv")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := New(path).Load(context.Background())
			var readErr *core.StorageReadError
			require.True(t, errors.As(err, &readErr), "got %v", err)
			assert.Equal(t, path, readErr.Source)
		})
	}
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New(filepath.Join(blocker, "ledger.csv")).Save(context.Background(), sample())
	var writeErr *core.StorageWriteError
	require.True(t, errors.As(err, &writeErr), "got %v", err)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "ledger.csv"))
	require.NoError(t, r.Save(context.Background(), sample()))
	require.NoError(t, r.Save(context.Background(), sample()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger.csv", entries[0].Name())
}
