// -----------------------------------------------------------------------
// Forum evidence client. Pulls ticker discussions and their top comments
// from Reddit's public JSON endpoints, rate limited to stay inside the
// unauthenticated quota.
// -----------------------------------------------------------------------

package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/models"
)

const searchWindow = "week"

type Client struct {
	client       *resty.Client
	limiter      *rate.Limiter
	baseURL      string
	postLimit    int
	commentLimit int
	logger       arbor.ILogger
}

func NewClient(cfg *common.ForumConfig, logger arbor.ILogger) *Client {
	timeout := 30 * time.Second
	if d, err := time.ParseDuration(cfg.RequestTimeout); err == nil && d > 0 {
		timeout = d
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &Client{
		client:       client,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:      cfg.BaseURL,
		postLimit:    cfg.PostLimit,
		commentLimit: cfg.CommentLimit,
		logger:       logger,
	}
}

// listing is the envelope Reddit wraps around both search results and
// comment trees.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string   `json:"kind"`
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	Stickied   bool    `json:"stickied"`
	CreatedUTC float64 `json:"created_utc"`
}

func (c *Client) FetchEvidence(ctx context.Context, ticker string) ([]models.EvidenceItem, error) {
	posts, err := c.search(ctx, ticker)
	if err != nil {
		return nil, err
	}

	items := make([]models.EvidenceItem, 0, len(posts))
	for _, p := range posts {
		item := models.EvidenceItem{
			Title: p.Title,
			Body:  p.Selftext,
			URL:   fmt.Sprintf("%s%s", c.baseURL, p.Permalink),
			Score: p.Score,
		}

		comments, err := c.fetchComments(ctx, p.Permalink)
		if err != nil {
			// Comments are best-effort; the post itself is still evidence.
			c.logger.Warn().
				Str("ticker", ticker).
				Str("post", p.ID).
				Err(err).
				Msg("Failed to fetch comments")
		} else {
			item.Comments = comments
		}

		items = append(items, item)
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Int("posts", len(items)).
		Msg("Collected forum evidence")

	return items, nil
}

func (c *Client) search(ctx context.Context, ticker string) ([]postData, error) {
	values := url.Values{}
	values.Set("q", ticker+" stock")
	values.Set("sort", "relevance")
	values.Set("t", searchWindow)
	values.Set("limit", strconv.Itoa(c.postLimit))
	values.Set("restrict_sr", "false")

	var result listing
	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, values.Encode())
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, models.NewEvidenceCollection(
			fmt.Sprintf("Could not collect discussion data for '%s'.", ticker), err)
	}

	posts := make([]postData, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		if child.Kind != "t3" || child.Data.Stickied {
			continue
		}
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (c *Client) fetchComments(ctx context.Context, permalink string) ([]models.EvidenceComment, error) {
	endpoint := fmt.Sprintf("%s%s.json?limit=%d&sort=top", c.baseURL, permalink, c.commentLimit)

	// A comment page is a two-element array: the post listing then the
	// comment tree.
	var pages []listing
	if err := c.getJSON(ctx, endpoint, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, nil
	}

	comments := make([]models.EvidenceComment, 0, c.commentLimit)
	for _, child := range pages[1].Data.Children {
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		comments = append(comments, models.EvidenceComment{
			Body:   child.Data.Body,
			Author: child.Data.Author,
			Score:  child.Data.Score,
		})
		if len(comments) >= c.commentLimit {
			break
		}
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), endpoint)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
