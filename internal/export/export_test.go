package export

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyanalysis/internal/core"
)

func nd(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func batch() Batch {
	return Batch{
		RunID:       "run-42",
		GeneratedAt: time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC),
		Months:      []string{"JAN", "FEB"},
		Dataset: &core.Dataset{Month: "YEAR", Transactions: []core.Transaction{
			{Row: 1, Date: core.NewDate(2024, 1, 2), Remarks: "SALARY", Deposit: nd(1000), Type: core.TypeSalaryCredit, Category: core.CategoryMiscellaneous},
			{Row: 1, Remarks: "ATM", Withdrawal: nd(200), Type: core.TypeExpense, Category: core.CategoryCardlessAtmUsage},
		}},
		Reports: []core.PeriodReport{{Period: "JAN", Rating: core.RatingGood}},
	}
}

func TestDocuments(t *testing.T) {
	docs := Documents(batch())
	require.Len(t, docs, 2)

	assert.NotEqual(t, docs[0].ID, docs[1].ID, "rows sharing a row number still get distinct IDs")
	assert.Equal(t, docs[0].ID, Documents(batch())[0].ID)
	require.NotNil(t, docs[0].Date)
	assert.Equal(t, "2024-01-02", *docs[0].Date)
	assert.Equal(t, "1000.00", *docs[0].Deposit)
	assert.Nil(t, docs[0].Withdrawal)
	assert.Nil(t, docs[1].Date)
	assert.Equal(t, "Cardless/ATM Usage", docs[1].Category)

	assert.Empty(t, Documents(Batch{}))
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "transactions.json")
	jf := NewJSONFile(path)
	require.NoError(t, jf.Export(context.Background(), batch()))
	require.NoError(t, jf.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "run-42", docs[0]["run_id"])
	assert.Nil(t, docs[1]["date"])
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(filepath.Join(t.TempDir(), "export.db"))
	defer s.Close()

	require.NoError(t, s.Export(ctx, batch()))
	require.NoError(t, s.Export(ctx, batch()), "a second export replaces the file")

	rows, err := s.Repository().Transactions(ctx, "run-42")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	reports, err := s.Repository().PeriodReports(ctx, "run-42")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestElasticsearch(t *testing.T) {
	var (
		mu      sync.Mutex
		indexed []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			fmt.Fprint(w, `{"acknowledged":true}`)
			return
		}
		var items []string
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if !strings.HasPrefix(line, `{"index"`) {
				continue
			}
			var meta struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			if err := json.Unmarshal([]byte(line), &meta); err != nil {
				continue
			}
			mu.Lock()
			indexed = append(indexed, meta.Index.ID)
			mu.Unlock()
			items = append(items, fmt.Sprintf(`{"index":{"_index":"tx","_id":%q,"status":201}}`, meta.Index.ID))
		}
		fmt.Fprintf(w, `{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	}))
	defer srv.Close()

	es := NewElasticsearch("tx", nil, srv.URL)
	require.NoError(t, es.Export(context.Background(), batch()))
	require.NoError(t, es.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{Documents(batch())[0].ID, Documents(batch())[1].ID}, indexed)
}

type stubIndexer struct {
	addErr error
	closed int
}

func (s *stubIndexer) Add(context.Context, esutil.BulkIndexerItem) error { return s.addErr }

func (s *stubIndexer) Close(context.Context) error {
	s.closed++
	return nil
}

func (s *stubIndexer) Stats() esutil.BulkIndexerStats { return esutil.BulkIndexerStats{} }

func TestElasticsearchClosesIndexerOnAddError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"acknowledged":true}`)
	}))
	defer srv.Close()

	stub := &stubIndexer{addErr: errors.New("queue closed")}
	es := NewElasticsearch("tx", nil, srv.URL)
	es.newIndexer = func(esutil.BulkIndexerConfig) (esutil.BulkIndexer, error) { return stub, nil }

	err := es.Export(context.Background(), batch())
	require.Error(t, err)
	assert.ErrorIs(t, err, stub.addErr)
	assert.Equal(t, 1, stub.closed)
}

func TestElasticsearchClosesIndexerOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"acknowledged":true}`)
	}))
	defer srv.Close()

	stub := &stubIndexer{}
	es := NewElasticsearch("tx", nil, srv.URL)
	es.newIndexer = func(esutil.BulkIndexerConfig) (esutil.BulkIndexer, error) { return stub, nil }

	require.NoError(t, es.Export(context.Background(), batch()))
	assert.Equal(t, 1, stub.closed)
}
