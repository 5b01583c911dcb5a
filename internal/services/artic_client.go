package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/artsearch/server/internal/observability"
)

// ErrUpstreamUnavailable is returned when the remote catalog cannot be reached
// or answers with a non-success status.
var ErrUpstreamUnavailable = errors.New("artwork catalog unavailable")

// SearchItem is one result row from a remote search page
type SearchItem struct {
	ExternalID int64
	Title      string
}

// SearchResult is one page of remote search results
type SearchResult struct {
	Items      []SearchItem
	TotalPages int
}

// ArtworkDetail carries the enrichment fields for a single artwork
type ArtworkDetail struct {
	IIIFBaseURL string
	ImageID     string
	ArtistInfo  *string
	DateInfo    *string
	AltText     *string
}

// SearchGateway fetches pages of search results from the remote catalog
type SearchGateway interface {
	SearchPage(ctx context.Context, term string, page int) (*SearchResult, error)
}

// DetailGateway fetches detail records for individual artworks
type DetailGateway interface {
	ArtworkDetail(ctx context.Context, externalID int64) (*ArtworkDetail, error)
}

// ArticClient talks to the Art Institute of Chicago public API using direct HTTP
type ArticClient struct {
	searchBaseURL string
	detailBaseURL string
	httpClient    *http.Client
	logger        *observability.Logger
}

// NewArticClient creates a new ArticClient
func NewArticClient(searchBaseURL, detailBaseURL string, timeout time.Duration) *ArticClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ArticClient{
		searchBaseURL: searchBaseURL,
		detailBaseURL: detailBaseURL,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        observability.GetLogger().WithField("component", "artic_client"),
	}
}

// searchResponse mirrors the remote search payload
type searchResponse struct {
	Pagination struct {
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
	Data []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"data"`
}

// detailResponse mirrors the remote detail payload
type detailResponse struct {
	Data struct {
		ImageID       *string `json:"image_id"`
		ArtistDisplay *string `json:"artist_display"`
		DateDisplay   *string `json:"date_display"`
		Thumbnail     *struct {
			AltText *string `json:"alt_text"`
		} `json:"thumbnail"`
	} `json:"data"`
	Config struct {
		IIIFURL string `json:"iiif_url"`
	} `json:"config"`
}

// SearchPage fetches one page of public-domain search results for term
func (c *ArticClient) SearchPage(ctx context.Context, term string, page int) (*SearchResult, error) {
	ctx, span := observability.StartGatewaySpan(ctx, "search")
	defer span.End()

	params := url.Values{}
	params.Set("q", term)
	params.Set("query[term][is_public_domain]", "true")
	params.Set("page", strconv.Itoa(page))
	reqURL := c.searchBaseURL + "?" + params.Encode()

	var payload searchResponse
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		observability.RecordError(span, err)
		c.logger.WithContext(ctx).Warnf("Search request failed for term %q page %d: %v", term, page, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result := &SearchResult{
		Items:      make([]SearchItem, 0, len(payload.Data)),
		TotalPages: payload.Pagination.TotalPages,
	}
	for _, d := range payload.Data {
		result.Items = append(result.Items, SearchItem{ExternalID: d.ID, Title: d.Title})
	}

	observability.SetSuccess(span)
	return result, nil
}

// ArtworkDetail fetches the detail record for one artwork
func (c *ArticClient) ArtworkDetail(ctx context.Context, externalID int64) (*ArtworkDetail, error) {
	ctx, span := observability.StartGatewaySpan(ctx, "detail")
	defer span.End()

	reqURL := fmt.Sprintf("%s/%d", c.detailBaseURL, externalID)

	var payload detailResponse
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		observability.RecordError(span, err)
		c.logger.WithContext(ctx).Warnf("Detail request failed for artwork %d: %v", externalID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	detail := &ArtworkDetail{
		IIIFBaseURL: payload.Config.IIIFURL,
		ArtistInfo:  payload.Data.ArtistDisplay,
		DateInfo:    payload.Data.DateDisplay,
	}
	if payload.Data.ImageID != nil {
		detail.ImageID = *payload.Data.ImageID
	}
	if payload.Data.Thumbnail != nil {
		detail.AltText = payload.Data.Thumbnail.AltText
	}

	observability.SetSuccess(span)
	return detail, nil
}

func (c *ArticClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
