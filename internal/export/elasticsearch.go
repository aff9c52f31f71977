package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"moneyanalysis/internal/log"
)

const esFlush = 2048

type Elasticsearch struct {
	addresses  []string
	index      string
	logger     *log.Logger
	newIndexer func(esutil.BulkIndexerConfig) (esutil.BulkIndexer, error)
}

func NewElasticsearch(index string, logger *log.Logger, urls ...string) *Elasticsearch {
	if len(urls) == 0 {
		urls = []string{"http://localhost:9200"}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Elasticsearch{
		addresses:  urls,
		index:      index,
		logger:     logger.WithComponent(log.ComponentExport),
		newIndexer: esutil.NewBulkIndexer,
	}
}

func (e *Elasticsearch) Name() string { return "elasticsearch" }

func (e *Elasticsearch) Export(ctx context.Context, b Batch) error {
	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,

		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		MaxRetries: 5,
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	bi, err := e.newIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}
	// The indexer owns worker and ticker goroutines until Close.
	closed := false
	defer func() {
		if !closed {
			_ = bi.Close(ctx)
		}
	}()

	res, err := es.Indices.Create(e.index)
	if err != nil {
		e.logger.WarnContext(ctx, "Could not create index", "index", e.index, log.FieldError, err)
	} else {
		res.Body.Close()
	}

	for _, doc := range Documents(b) {
		data, err := doc.JSON()
		if err != nil {
			return err
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					e.logger.ErrorContext(ctx, "Failed to index transaction", "id", item.DocumentID, log.FieldError, err)
				} else {
					e.logger.ErrorContext(ctx, "Failed to index transaction", "id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
				}
			},
		})
		if err != nil {
			return fmt.Errorf("queue document %s: %w", doc.ID, err)
		}
	}

	closed = true
	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d documents", stats.NumFailed, stats.NumAdded)
	}
	e.logger.InfoContext(ctx, "Indexed documents", "index", e.index, "count", stats.NumFlushed)
	return nil
}

func (e *Elasticsearch) Close() error { return nil }
