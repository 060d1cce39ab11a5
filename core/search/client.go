package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"TubeFM/core/convert"
	"TubeFM/logger"
	"TubeFM/model"
)

// Searcher is the provider interface the HTTP layer consumes.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResultItem, error)
}

// Client queries the YouTube Data API for candidate media items.
type Client struct {
	apiKey    string
	searchURL string
	http      *http.Client
}

// NewClient creates a search client against the given search endpoint URL.
func NewClient(apiKey, searchURL string) *Client {
	return &Client{
		apiKey:    apiKey,
		searchURL: searchURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ytThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default ytThumbnail `json:"default"`
				Medium  ytThumbnail `json:"medium"`
				High    ytThumbnail `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns up to limit ranked video results for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.SearchResultItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 24
	}

	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", strconv.Itoa(limit))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	reqURL := c.searchURL + "?" + val.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search status %d", resp.StatusCode)
	}

	var body ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]model.SearchResultItem, 0, len(body.Items))
	var videoIDs []string

	for _, it := range body.Items {
		if it.ID.VideoID == "" {
			continue
		}

		sn := it.Snippet
		item := model.SearchResultItem{
			ID:         it.ID.VideoID,
			Title:      sn.Title,
			URL:        "https://www.youtube.com/watch?v=" + it.ID.VideoID,
			Thumbnails: thumbnailList(sn.Thumbnails.Default, sn.Thumbnails.Medium, sn.Thumbnails.High),
		}
		if sn.ChannelTitle != "" {
			item.Author = &model.Author{Name: sn.ChannelTitle}
			if sn.ChannelID != "" {
				item.Author.URL = "https://www.youtube.com/channel/" + sn.ChannelID
			}
		}

		out = append(out, item)
		videoIDs = append(videoIDs, it.ID.VideoID)
	}

	// Durations need a second call; results without them are still useful.
	if len(videoIDs) > 0 {
		durations, err := c.fetchDurations(ctx, videoIDs)
		if err != nil {
			logger.Warn("search duration lookup failed", logger.ErrorField(err))
		} else {
			for i := range out {
				if d, ok := durations[out[i].ID]; ok {
					out[i].Duration = convert.FormatDuration(d)
				}
			}
		}
	}

	return out, nil
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// fetchDurations resolves per-video durations in seconds via the videos
// endpoint that lives next to the configured search endpoint.
func (c *Client) fetchDurations(ctx context.Context, ids []string) (map[string]int, error) {
	val := url.Values{}
	val.Set("part", "contentDetails")
	val.Set("id", strings.Join(ids, ","))
	val.Set("key", c.apiKey)

	reqURL := strings.TrimSuffix(c.searchURL, "/search") + "/videos?" + val.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube videos status %d", resp.StatusCode)
	}

	var body ytVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	durations := make(map[string]int, len(body.Items))
	for _, item := range body.Items {
		durations[item.ID] = parseISO8601Duration(item.ContentDetails.Duration)
	}
	return durations, nil
}

var iso8601Duration = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

func parseISO8601Duration(duration string) int {
	matches := iso8601Duration.FindStringSubmatch(duration)
	if len(matches) < 4 {
		return 0
	}

	var h, m, s int
	fmt.Sscanf(matches[1], "%d", &h)
	fmt.Sscanf(matches[2], "%d", &m)
	fmt.Sscanf(matches[3], "%d", &s)

	return h*3600 + m*60 + s
}

func thumbnailList(thumbs ...ytThumbnail) []model.Thumbnail {
	out := make([]model.Thumbnail, 0, len(thumbs))
	for _, t := range thumbs {
		if t.URL == "" {
			continue
		}
		out = append(out, model.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	return out
}
