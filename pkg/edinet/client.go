// Package edinet provides a client for the FSA EDINET v2 disclosure API.
package edinet

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/resilience"
)

const defaultBaseURL = "https://disclosure.edinet-fsa.go.jp/api/v2"

// DocTypeAnnualReport is the document type code for 有価証券報告書.
const DocTypeAnnualReport = "120"

// Client reads the EDINET document index and filing CSVs.
type Client interface {
	// Documents lists filings submitted on date.
	Documents(ctx context.Context, date time.Time) ([]Document, error)
	// Figures downloads the CSV rendition of a filing and extracts headline figures.
	Figures(ctx context.Context, docID string) (*Figures, error)
}

// Document is one entry of the daily filing index.
type Document struct {
	DocID          string `json:"docID"`
	EdinetCode     string `json:"edinetCode"`
	SecCode        string `json:"secCode"`
	JCN            string `json:"JCN"`
	FilerName      string `json:"filerName"`
	DocTypeCode    string `json:"docTypeCode"`
	PeriodStart    string `json:"periodStart"`
	PeriodEnd      string `json:"periodEnd"`
	DocDescription string `json:"docDescription"`
	CSVFlag        string `json:"csvFlag"`
}

type documentsResponse struct {
	Metadata struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"metadata"`
	Results []Document `json:"results"`
	// Error responses use a flat shape.
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an EDINET client for the given subscription key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Documents(ctx context.Context, date time.Time) ([]Document, error) {
	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	q.Set("type", "2")
	q.Set("Subscription-Key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/documents.json?"+q.Encode(), 8<<20)
	if err != nil {
		return nil, eris.Wrap(err, "edinet: documents")
	}

	var out documentsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "edinet: unmarshal documents")
	}
	if out.StatusCode != 0 && out.StatusCode != http.StatusOK {
		return nil, eris.Errorf("edinet: documents: api status %d: %s", out.StatusCode, out.Message)
	}
	if out.Metadata.Status != "" && out.Metadata.Status != "200" {
		return nil, eris.Errorf("edinet: documents: api status %s: %s", out.Metadata.Status, out.Metadata.Message)
	}
	return out.Results, nil
}

func (c *httpClient) Figures(ctx context.Context, docID string) (*Figures, error) {
	q := url.Values{}
	q.Set("type", "5")
	q.Set("Subscription-Key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/documents/"+url.PathEscape(docID)+"?"+q.Encode(), 64<<20)
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: document %s", docID)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: open archive %s", docID)
	}

	figs := &Figures{}
	for _, f := range zr.File {
		if !isCSV(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "edinet: open %s", f.Name)
		}
		err = figs.readCSV(rc)
		rc.Close() //nolint:errcheck
		if err != nil {
			return nil, eris.Wrapf(err, "edinet: parse %s", f.Name)
		}
	}
	return figs, nil
}

func (c *httpClient) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}
	return body, nil
}
