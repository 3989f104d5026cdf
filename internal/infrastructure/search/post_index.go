// Package search keeps the product catalog in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type PostIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewPostIndex(es *elasticsearch.Client, index string) *PostIndex {
	return &PostIndex{es: es, index: index}
}

type postDoc struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category,omitempty"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discount_price"`
	Stock         int     `json:"stock"`
	InStock       bool    `json:"in_stock"`
	ImageURL      string  `json:"image_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toDoc(p *entity.Post) postDoc {
	return postDoc{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		InStock:       p.InStock,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (d postDoc) post() entity.Post {
	p := entity.Post{
		ID:            d.ID,
		UserID:        d.UserID,
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		Price:         d.Price,
		DiscountPrice: d.DiscountPrice,
		Stock:         d.Stock,
		InStock:       d.InStock,
		ImageURL:      d.ImageURL,
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return p
}

// postMapping keeps ids and owners exact and makes the text fields searchable.
const postMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "user_id":        {"type": "keyword"},
      "title":          {"type": "text"},
      "description":    {"type": "text"},
      "category":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "price":          {"type": "scaled_float", "scaling_factor": 100},
      "discount_price": {"type": "scaled_float", "scaling_factor": 100},
      "stock":          {"type": "integer"},
      "in_stock":       {"type": "boolean"},
      "image_url":      {"type": "keyword", "index": false},
      "created_at":     {"type": "date"},
      "updated_at":     {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *PostIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(c, i.es)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es exists: %s", exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{Index: i.index, Body: strings.NewReader(postMapping)}.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a concurrent instance may have won the race
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

func (i *PostIndex) Index(ctx context.Context, p *entity.Post) error {
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (i *PostIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over title, description and category.
func (i *PostIndex) Search(ctx context.Context, q string, size int) ([]entity.Post, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "category^2", "description"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(i.es.Search.WithContext(c), i.es.Search.WithIndex(i.index), i.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Source postDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Post, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		p := h.Source.post()
		if p.ID == "" {
			p.ID = h.ID
		}
		out = append(out, p)
	}
	return out, nil
}
