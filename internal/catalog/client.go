// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/anistats/internal/buildinfo"
	"github.com/autobrr/anistats/internal/domain"
)

const (
	defaultPageSize  = 50
	defaultAttempts  = 4
	defaultBaseDelay = time.Second
)

const seasonQuery = `
query ($season: MediaSeason!, $seasonYear: Int!, $page: Int!, $perPage: Int!) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      hasNextPage
      currentPage
    }
    media(season: $season, seasonYear: $seasonYear, type: ANIME) {
      id
      title {
        romaji
        english
      }
      synonyms
      episodes
      status
      format
      airingSchedule {
        nodes {
          episode
          airingAt
        }
      }
    }
  }
}`

// Client queries the catalog service's GraphQL endpoint. Fetching happens once
// per run with bounded retries; the engine never talks to the network after
// the catalog is resolved.
type Client struct {
	url      string
	http     *http.Client
	pageSize int
	attempts uint
}

// NewClient creates a catalog client for the given GraphQL endpoint.
func NewClient(url string) *Client {
	return &Client{
		url:      url,
		http:     &http.Client{Timeout: 30 * time.Second},
		pageSize: defaultPageSize,
		attempts: defaultAttempts,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlMedia struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	Synonyms       []string `json:"synonyms"`
	Episodes       *int     `json:"episodes"`
	Status         string   `json:"status"`
	Format         string   `json:"format"`
	AiringSchedule struct {
		Nodes []struct {
			Episode  int   `json:"episode"`
			AiringAt int64 `json:"airingAt"`
		} `json:"nodes"`
	} `json:"airingSchedule"`
}

type gqlResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
				CurrentPage int  `json:"currentPage"`
			} `json:"pageInfo"`
			Media []gqlMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchSeason returns all validated shows for one season. A failure after the
// retry budget is exhausted is fatal for the run: there is no safe partial
// catalog to match against.
func (c *Client) FetchSeason(ctx context.Context, season domain.SeasonConfig) ([]Show, error) {
	var shows []Show

	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, season, page)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog fetch failed for %s page %d", season.Name, page)
		}

		for _, media := range resp.Data.Page.Media {
			show, ok := parseShow(media)
			if !ok {
				log.Warn().Int("id", media.ID).Msg("catalog: skipping entry with missing required fields")
				continue
			}
			shows = append(shows, show)
		}

		if !resp.Data.Page.PageInfo.HasNextPage {
			break
		}
	}

	log.Info().Str("season", season.Name).Int("shows", len(shows)).Msg("catalog: season fetched")
	return shows, nil
}

// FetchSeasons fetches every configured season, deduplicating shows that the
// catalog lists in more than one season.
func (c *Client) FetchSeasons(ctx context.Context, seasons []domain.SeasonConfig) ([]Show, error) {
	seen := make(map[int]bool)
	var all []Show

	for _, season := range seasons {
		shows, err := c.FetchSeason(ctx, season)
		if err != nil {
			return nil, err
		}
		for _, show := range shows {
			if seen[show.ID] {
				continue
			}
			seen[show.ID] = true
			all = append(all, show)
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, season domain.SeasonConfig, page int) (*gqlResponse, error) {
	body, err := json.Marshal(gqlRequest{
		Query: seasonQuery,
		Variables: map[string]any{
			"season":     season.Season,
			"seasonYear": season.Year,
			"page":       page,
			"perPage":    c.pageSize,
		},
	})
	if err != nil {
		return nil, err
	}

	var resp *gqlResponse
	err = retry.Do(
		func() error {
			var doErr error
			resp, doErr = c.do(ctx, body)
			return doErr
		},
		retry.Attempts(c.attempts),
		retry.Delay(defaultBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("season", season.Name).Int("page", page).
				Msg("catalog: request failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, body []byte) (*gqlResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("catalog returned status %d", res.StatusCode)
	}

	var parsed gqlResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("catalog error: %s", parsed.Errors[0].Message)
	}

	return &parsed, nil
}

// parseShow validates one raw catalog entry. Entries without an id or any
// title are unusable for matching and are excluded, not fatal.
func parseShow(media gqlMedia) (Show, bool) {
	if media.ID == 0 {
		return Show{}, false
	}
	if media.Title.Romaji == "" && media.Title.English == "" {
		return Show{}, false
	}

	show := Show{
		ID:           media.ID,
		TitleRomaji:  media.Title.Romaji,
		TitleEnglish: media.Title.English,
		Synonyms:     media.Synonyms,
		Episodes:     media.Episodes,
		Status:       media.Status,
		Format:       media.Format,
	}
	for _, node := range media.AiringSchedule.Nodes {
		show.Schedule = append(show.Schedule, Airing{
			Episode:  node.Episode,
			AiringAt: time.Unix(node.AiringAt, 0).UTC(),
		})
	}
	return show, true
}
