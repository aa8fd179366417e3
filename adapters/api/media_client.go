package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	outlet "github.com/neoidea/outlet"
	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/ports"
)

const (
	defaultTimezone  = "America/Sao_Paulo"
	defaultMediaLang = "ptbr"
)

// MediaClient talks to the two auxiliary media services: the elive
// live-stream listing and the podcast content server. Unlike the portal
// endpoints these answer with raw JSON payloads, not the envelope.
type MediaClient struct {
	client     httpClient
	eliveURL   string
	podcastURL string
	mdiID      string
	lang       string
}

// NewMediaClient creates a client over both media service base URLs.
func NewMediaClient(client httpClient, eliveURL, podcastURL, mdiID string) *MediaClient {
	return &MediaClient{
		client:     client,
		eliveURL:   eliveURL,
		podcastURL: podcastURL,
		mdiID:      mdiID,
		lang:       defaultMediaLang,
	}
}

var _ ports.MediaAPI = (*MediaClient)(nil)

// LiveBroadcasts lists live streams. eliveID narrows the listing to one
// stream; an empty timezone falls back to the service default.
func (c *MediaClient) LiveBroadcasts(ctx context.Context, eliveID, timezone string) ([]core.Broadcast, error) {
	if timezone == "" {
		timezone = defaultTimezone
	}
	q := url.Values{}
	q.Set("a", "getListaTransmissao")
	q.Set("elive_id", eliveID)
	q.Set("user_tz", timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.eliveURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var broadcasts []core.Broadcast
	if err := json.Unmarshal(body, &broadcasts); err != nil {
		return nil, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}
	return broadcasts, nil
}

// Podcast fetches one audio release with its track listing. The service
// requires the session token; without one this fails locally.
func (c *MediaClient) Podcast(ctx context.Context, token, id string) (core.Podcast, error) {
	if token == "" {
		return core.Podcast{}, core.ErrNotAuthenticated
	}

	form := url.Values{}
	form.Set("action", "music")
	form.Set("id", id)
	form.Set("mdi_id", c.mdiID)
	form.Set("lang", c.lang)
	form.Set("serial", "web version")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.podcastURL, strings.NewReader(form.Encode()))
	if err != nil {
		return core.Podcast{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req)
	if err != nil {
		return core.Podcast{}, err
	}

	var podcast core.Podcast
	if err := json.Unmarshal(body, &podcast); err != nil {
		return core.Podcast{}, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}
	return podcast, nil
}

// PodcastAudioURL builds the streaming URL for one track of a release.
func (c *MediaClient) PodcastAudioURL(podcastID, trackID string) string {
	q := url.Values{}
	q.Set("action", "music")
	q.Set("id", podcastID)
	q.Set("track", trackID)
	return c.podcastURL + "?" + q.Encode()
}

func (c *MediaClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", outlet.ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", outlet.ErrServiceUnavailable, resp.StatusCode)
	}
	return body, nil
}
