// Package metaads is a thin Meta Ad Library client used for paid-ad
// detection. Finding active ads for a practice is a positive signal;
// finding none proves nothing, the library only indexes what Meta
// serves.
package metaads

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client performs Meta Ad Library operations.
type Client interface {
	SearchAds(ctx context.Context, req AdSearchRequest) (*AdSearchResponse, error)
}

// AdSearchRequest narrows an ad archive search.
type AdSearchRequest struct {
	SearchTerms      string
	ReachedCountries []string
	ActiveOnly       bool
	Limit            int
}

// Ad is one ad archive record. Only the fields detection needs.
type Ad struct {
	ID               string `json:"id"`
	PageID           string `json:"page_id"`
	PageName         string `json:"page_name"`
	AdDeliveryStart  string `json:"ad_delivery_start_time"`
	AdCreativeBodies []struct {
		Text string `json:"text"`
	} `json:"ad_creative_bodies"`
}

// AdSearchResponse is the ad archive search result page.
type AdSearchResponse struct {
	Data   []Ad `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Meta Ad Library client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchAds(ctx context.Context, searchReq AdSearchRequest) (*AdSearchResponse, error) {
	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("search_terms", searchReq.SearchTerms)
	q.Set("fields", "id,page_id,page_name,ad_delivery_start_time,ad_creative_bodies")
	countries := searchReq.ReachedCountries
	if len(countries) == 0 {
		countries = []string{"US"}
	}
	cj, err := json.Marshal(countries)
	if err != nil {
		return nil, eris.Wrap(err, "metaads: marshal countries")
	}
	q.Set("ad_reached_countries", string(cj))
	if searchReq.ActiveOnly {
		q.Set("ad_active_status", "ACTIVE")
	}
	if searchReq.Limit > 0 {
		q.Set("limit", strconv.Itoa(searchReq.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ads_archive?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "metaads: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "metaads: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "metaads: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("metaads: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result AdSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "metaads: unmarshal response")
	}

	return &result, nil
}
