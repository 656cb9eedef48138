package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/vedank-s/job-scout/internal/utils"
)

const (
	apiURL      = "https://google.serper.dev/search"
	contentType = "application/json"

	// Only the top results of each query are worth scoring.
	perQueryTop = 3
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []map[string]any `json:"organic"`
}

// Client talks to the Serper search API.
type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
	// QueryDelay is an optional pause between consecutive queries, a
	// courtesy limit against the search API. Zero disables it.
	QueryDelay time.Duration
}

func New(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey: apiKey,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Search runs one query. A non-200 response means "no results for this
// query" and is not an error; only transport failures are.
func (c *Client) Search(ctx context.Context, query string, num int, region, language string) ([]Result, error) {
	payload := map[string]any{
		"q":   query,
		"num": num,
		"gl":  region,
		"hl":  language,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("make search request", zap.String("query", query))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("search returned non-200 status",
			zap.String("query", query),
			zap.String("status", resp.Status),
		)
		return nil, nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var results []Result
	cfg := &mapstructure.DecoderConfig{
		Result:  &results,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(parsed.Organic); err != nil {
		return nil, fmt.Errorf("decode organic items: %w", err)
	}

	return results, nil
}

// SearchAll runs the given queries, keeps the top results of each and
// deduplicates by link across queries. A failing query is skipped; the
// remaining queries still run.
func (c *Client) SearchAll(ctx context.Context, queries []string, num int, region, language string) ([]Result, error) {
	var all []Result
	seen := make(map[string]struct{})

	for i, query := range queries {
		if i > 0 && c.QueryDelay > 0 {
			if err := utils.WaitFor(ctx, c.QueryDelay); err != nil {
				return all, err
			}
		}

		results, err := c.Search(ctx, query, num, region, language)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			c.logger.Warn("skipping failed query",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		kept := 0
		for _, result := range results {
			if kept >= perQueryTop {
				break
			}
			if result.Link == "" {
				continue
			}
			if _, ok := seen[result.Link]; ok {
				continue
			}
			seen[result.Link] = struct{}{}
			all = append(all, result)
			kept++
		}
	}

	return all, nil
}
