package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticConfig tunes the Elasticsearch-backed index.
type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	// ReportsIndex holds one document per analyzable report.
	ReportsIndex string
	// DocsIndex holds the system documentation passages.
	DocsIndex string
	// KnownReportIDs restricts report discovery to the catalog's documents.
	KnownReportIDs []string
}

// Elastic implements Index against an Elasticsearch cluster.
type Elastic struct {
	es             *elasticsearch.Client
	reportsIndex   string
	docsIndex      string
	knownReportIDs []string
}

func NewElastic(cfg ElasticConfig) (*Elastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Elastic{
		es:             es,
		reportsIndex:   cfg.ReportsIndex,
		docsIndex:      cfg.DocsIndex,
		knownReportIDs: cfg.KnownReportIDs,
	}, nil
}

func (e *Elastic) Ping(ctx context.Context) error {
	res, err := e.es.Ping(e.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// Reports runs a balanced query over description, content and tags, boosted
// so exact content matches outrank tag matches.
func (e *Elastic) Reports(ctx context.Context, query string) ([]ReportHit, error) {
	should := []map[string]any{
		{"match": map[string]any{"report_description": map[string]any{"query": query, "operator": "or", "boost": 3.0}}},
		{"match": map[string]any{"searchable_content": map[string]any{"query": query, "operator": "or", "boost": 4.0}}},
		{"match": map[string]any{"tags": map[string]any{"query": query, "operator": "or", "boost": 3.5}}},
		{"multi_match": map[string]any{
			"query":    query,
			"fields":   []string{"searchable_content^3", "report_description^3", "tags^2"},
			"type":     "best_fields",
			"operator": "or",
		}},
		{"wildcard": map[string]any{"searchable_content": map[string]any{"value": "*" + strings.ToLower(query) + "*", "boost": 2.0}}},
	}
	boolQuery := map[string]any{"should": should, "minimum_should_match": 1}
	if len(e.knownReportIDs) > 0 {
		boolQuery["must"] = []map[string]any{{"terms": map[string]any{"_id": e.knownReportIDs}}}
	}
	body := map[string]any{"query": map[string]any{"bool": boolQuery}}

	hits, err := e.search(ctx, e.reportsIndex, body, len(e.knownReportIDs))
	if err != nil {
		return nil, err
	}
	out := make([]ReportHit, 0, len(hits))
	for _, h := range hits {
		var src struct {
			Description string   `json:"report_description"`
			Tags        []string `json:"tags"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			continue
		}
		out = append(out, ReportHit{ID: h.ID, Score: h.Score, Description: src.Description, Tags: src.Tags})
	}
	return out, nil
}

func (e *Elastic) Documents(ctx context.Context, query string, size int) ([]Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"content": map[string]any{"query": query, "operator": "or"},
			},
		},
	}
	hits, err := e.search(ctx, e.docsIndex, body, size)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(hits))
	for _, h := range hits {
		var src struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			continue
		}
		out = append(out, Document{Score: h.Score, Content: src.Content})
	}
	return out, nil
}

// TableJSON fetches the serialized table attached to a report document. It is
// the Elasticsearch tabular source used by the loader in internal/tabular.
func (e *Elastic) TableJSON(ctx context.Context, docID string) ([]byte, error) {
	res, err := e.es.Get(e.reportsIndex, docID, e.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", docID, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return nil, fmt.Errorf("report %s not found in index %s", docID, e.reportsIndex)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s: %s", docID, res.Status())
	}
	var doc struct {
		Found  bool `json:"found"`
		Source struct {
			TableDataJSON string `json:"table_data_json"`
		} `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", docID, err)
	}
	if !doc.Found || doc.Source.TableDataJSON == "" {
		return nil, fmt.Errorf("report %s has no table data", docID)
	}
	return []byte(doc.Source.TableDataJSON), nil
}

type rawHit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

func (e *Elastic) search(ctx context.Context, index string, body map[string]any, size int) ([]rawHit, error) {
	if size <= 0 {
		size = 10
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(index),
		e.es.Search.WithBody(&buf),
		e.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.Status())
	}
	var parsed struct {
		Hits struct {
			Hits []rawHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Hits.Hits, nil
}
