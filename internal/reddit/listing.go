package reddit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ppiankov/answermirror/internal/model"
)

// ErrMalformed is returned when a listing cannot be parsed
var ErrMalformed = errors.New("malformed listing")

// HotPosts returns the current hot posts of a subreddit
func (c *Client) HotPosts(ctx context.Context, subreddit string, limit int) ([]model.SourcePost, error) {
	query := url.Values{"raw_json": {"1"}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/r/"+url.PathEscape(subreddit)+"/hot", query)
	if err != nil {
		return nil, fmt.Errorf("hot posts of r/%s: %w", subreddit, err)
	}
	return c.parsePosts(body)
}

// Comments returns the top-level comments of a thread in display order.
// Collapsed comment stubs come back as placeholder comments.
func (c *Client) Comments(ctx context.Context, post model.SourcePost) ([]model.Comment, error) {
	query := url.Values{
		"raw_json": {"1"},
		"depth":    {"1"},
		"limit":    {"500"},
	}

	body, err := c.get(ctx, "/comments/"+url.PathEscape(post.ID), query)
	if err != nil {
		return nil, fmt.Errorf("comments of %s: %w", post.ID, err)
	}
	return c.parseComments(body)
}

func (c *Client) parsePosts(body []byte) ([]model.SourcePost, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformed
	}
	children := gjson.GetBytes(body, "data.children")
	if !children.IsArray() {
		return nil, fmt.Errorf("%w: no data.children", ErrMalformed)
	}

	var posts []model.SourcePost
	children.ForEach(func(_, child gjson.Result) bool {
		if child.Get("kind").String() != "t3" {
			return true
		}
		d := child.Get("data")
		id := d.Get("id").String()
		if id == "" {
			return true
		}
		posts = append(posts, model.SourcePost{
			ID:            id,
			Title:         d.Get("title").String(),
			Author:        d.Get("author").String(),
			Flair:         d.Get("link_flair_text").String(),
			Distinguished: distinguished(d),
			NumComments:   int(d.Get("num_comments").Int()),
			Permalink:     c.permalink(d.Get("permalink").String()),
			ShortLink:     "https://redd.it/" + id,
		})
		return true
	})
	return posts, nil
}

func (c *Client) parseComments(body []byte) ([]model.Comment, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformed
	}
	children := gjson.GetBytes(body, "1.data.children")
	if !children.IsArray() {
		return nil, fmt.Errorf("%w: no comment listing", ErrMalformed)
	}

	var comments []model.Comment
	children.ForEach(func(_, child gjson.Result) bool {
		d := child.Get("data")
		switch child.Get("kind").String() {
		case "t1":
			comments = append(comments, model.Comment{
				ID:            d.Get("id").String(),
				Author:        d.Get("author").String(),
				Body:          d.Get("body").String(),
				CreatedUTC:    unixTime(d.Get("created_utc").Float()),
				Distinguished: distinguished(d),
				Permalink:     c.permalink(d.Get("permalink").String()),
			})
		case "more":
			comments = append(comments, model.Comment{ID: d.Get("id").String(), Placeholder: true})
		}
		return true
	})
	return comments, nil
}

// distinguished is set to "moderator", "admin" or "special"; null otherwise
func distinguished(d gjson.Result) bool {
	v := d.Get("distinguished")
	return v.Exists() && v.Type == gjson.String && v.String() != ""
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
