// Package fbref scrapes the FBref daily fixtures pages, which carry the shot
// and xG detail the SofaScore schedule rows lack.
package fbref

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/provider"
)

const sourceName = "fbref"

// Client scrapes the matches-by-date page.
type Client struct {
	fetcher *provider.Fetcher
	baseURL string
}

// New creates an FBref client on top of the shared fetcher.
func New(fetcher *provider.Fetcher, baseURL string) *Client {
	return &Client{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements provider.Client.
func (c *Client) Name() string { return sourceName }

// FetchDay retrieves and parses the fixtures page for the given date.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]model.Match, error) {
	dateStr := date.Format("2006-01-02")
	url := fmt.Sprintf("%s/en/matches/%s", c.baseURL, dateStr)

	body, err := c.fetcher.Get(ctx, url, "fixtures_page")
	if err != nil {
		return nil, fmt.Errorf("fbref fixtures page for %s: %w", dateStr, err)
	}
	return ParseFixturesPage(body, date)
}

// ParseFixturesPage extracts matches from a daily fixtures page. Each
// competition is one schedule table; rows carry data-stat attributed cells.
func ParseFixturesPage(body []byte, date time.Time) ([]model.Match, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse fbref html: %w", err)
	}

	scrapedAt := time.Now().UTC()
	var matches []model.Match

	doc.Find("table.stats_table").Each(func(_ int, table *goquery.Selection) {
		competition := tableCompetition(table)

		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			if strings.Contains(row.AttrOr("class", ""), "spacer") {
				return
			}

			home := cellText(row, "home_team")
			away := cellText(row, "away_team")
			if home == "" || away == "" {
				return
			}

			fixture := model.Fixture{
				ExternalID:  fmt.Sprintf("fb-%s-%s-%s", date.Format("20060102"), slug(home), slug(away)),
				Date:        date,
				StartTime:   cellText(row, "start_time"),
				HomeTeam:    home,
				AwayTeam:    away,
				Venue:       cellText(row, "venue"),
				Competition: competition,
				Round:       cellText(row, "gameweek"),
				Source:      sourceName,
			}

			score := cellText(row, "score")
			if hg, ag, ok := parseScore(score); ok {
				fixture.HomeGoals = hg
				fixture.AwayGoals = ag
				fixture.Status = model.StatusFinished
			} else {
				fixture.Status = model.StatusScheduled
			}

			fixture.HomeXG = parseFloat(cellText(row, "home_xg"))
			fixture.AwayXG = parseFloat(cellText(row, "away_xg"))

			matches = append(matches, model.Standardize(fixture, scrapedAt)...)
		})
	})

	if len(matches) == 0 && doc.Find("table.stats_table").Length() == 0 {
		return nil, fmt.Errorf("no schedule tables found for %s", date.Format("2006-01-02"))
	}
	return matches, nil
}

func tableCompetition(table *goquery.Selection) string {
	if caption := strings.TrimSpace(table.Find("caption").First().Text()); caption != "" {
		return strings.TrimSuffix(caption, " Table")
	}
	return "Unknown"
}

func cellText(row *goquery.Selection, stat string) string {
	return strings.TrimSpace(row.Find(fmt.Sprintf(`[data-stat="%s"]`, stat)).First().Text())
}

// parseScore handles "2–1" (FBref uses an en dash) and "2-1".
func parseScore(s string) (int, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	for _, sep := range []string{"–", "-"} {
		parts := strings.SplitN(s, sep, 2)
		if len(parts) != 2 {
			continue
		}
		hg, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		ag, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil {
			return hg, ag, true
		}
	}
	return 0, 0, false
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
