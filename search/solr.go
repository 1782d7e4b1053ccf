// Package search looks up container records in a Solr index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sethgrid/pester"
	"golang.org/x/sync/singleflight"

	"github.com/finc/marcfacts/container"
)

// Config configures a SolrClient.
type Config struct {
	// URL is the core URL, e.g. "http://localhost:8983/solr/biblio".
	URL         string
	Timeout     time.Duration
	MaxRetries  int
	IDField     string
	RecordField string
}

// defaultTimeout bounds a shared request when Config.Timeout is unset.
const defaultTimeout = 10 * time.Second

// SolrClient implements container.Searcher. It is safe for concurrent use;
// identical queries in flight at the same time share one request. The
// shared request does not inherit any caller's cancellation, and each
// caller stops waiting when its own context ends.
type SolrClient struct {
	baseURL     string
	timeout     time.Duration
	client      *pester.Client
	group       singleflight.Group
	idField     string
	recordField string
}

var _ container.Searcher = (*SolrClient)(nil)

// NewSolrClient returns a client with retrying HTTP transport.
func NewSolrClient(cfg Config) *SolrClient {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = cfg.MaxRetries
	if client.MaxRetries < 1 {
		client.MaxRetries = 1
	}
	client.SetRetryOnHTTP429(true)
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}

	c := &SolrClient{
		baseURL:     strings.TrimSuffix(cfg.URL, "/"),
		timeout:     cfg.Timeout,
		client:      client,
		idField:     cfg.IDField,
		recordField: cfg.RecordField,
	}
	if c.idField == "" {
		c.idField = "id"
	}
	if c.recordField == "" {
		c.recordField = "fullrecord"
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

type solrResponse struct {
	ResponseHeader struct {
		Status int `json:"status"`
		QTime  int `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int                      `json:"numFound"`
		Docs     []map[string]interface{} `json:"docs"`
	} `json:"response"`
	Error struct {
		Msg string `json:"msg"`
	} `json:"error"`
}

// Search runs q against the select handler.
func (c *SolrClient) Search(ctx context.Context, q container.Query) ([]container.Record, error) {
	ch := c.group.DoChan(q.LookFor, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.search(lookupCtx, q)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		slog.Debug("shared in-flight solr query", "q", q.LookFor)
	}

	docs := res.Val.([]Document)
	out := make([]container.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out, nil
}

func (c *SolrClient) search(ctx context.Context, q container.Query) ([]Document, error) {
	rows := q.Limit
	if rows <= 0 {
		rows = 10
	}
	params := url.Values{}
	params.Set("q", q.LookFor)
	params.Set("wt", "json")
	params.Set("rows", strconv.Itoa(rows))
	params.Set("fl", strings.Join([]string{c.idField, "title", "format", c.recordField}, ","))

	u := c.baseURL + "/select?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	slog.Debug("network request complete",
		"url", u,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var sr solrResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding solr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if sr.Error.Msg != "" {
			return nil, fmt.Errorf("solr returned %s: %s", resp.Status, sr.Error.Msg)
		}
		return nil, fmt.Errorf("solr returned %s", resp.Status)
	}
	if sr.ResponseHeader.Status != 0 {
		return nil, fmt.Errorf("solr status %d", sr.ResponseHeader.Status)
	}

	docs := make([]Document, 0, len(sr.Response.Docs))
	for _, raw := range sr.Response.Docs {
		doc, err := c.decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *SolrClient) decodeDoc(raw map[string]interface{}) (Document, error) {
	// Map configured field names onto the document's fixed keys.
	if c.idField != "id" {
		raw["id"] = raw[c.idField]
	}
	if c.recordField != "fullrecord" {
		raw["fullrecord"] = raw[c.recordField]
	}

	var doc Document
	cfg := &mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "solr",
		WeaklyTypedInput: true,
		ZeroFields:       true,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Document{}, fmt.Errorf("creating document decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Document{}, fmt.Errorf("decoding solr document: %w", err)
	}
	return doc, nil
}
