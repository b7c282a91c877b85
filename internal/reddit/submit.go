package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError carries the errors array of an api_type=json response
type APIError struct {
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SubmitPost creates a self post and returns its fullname (t3_...)
func (c *Client) SubmitPost(ctx context.Context, subreddit, title, body string) (string, error) {
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"self"},
		"sr":       {subreddit},
		"title":    {title},
		"text":     {body},
		"resubmit": {"true"},
	}

	resp, err := c.post(ctx, "/api/submit", form)
	if err != nil {
		return "", fmt.Errorf("submit to r/%s: %w", subreddit, err)
	}
	if err := apiErrors(resp); err != nil {
		return "", fmt.Errorf("submit to r/%s: %w", subreddit, err)
	}

	name := gjson.GetBytes(resp, "json.data.name").String()
	if name == "" {
		return "", fmt.Errorf("submit to r/%s: %w: no post name in response", subreddit, ErrMalformed)
	}
	return name, nil
}

// AddComment replies to a post. destinationID may be a bare id or a t3_ fullname.
func (c *Client) AddComment(ctx context.Context, destinationID, body string) error {
	thing := destinationID
	if !strings.HasPrefix(thing, "t3_") {
		thing = "t3_" + thing
	}

	form := url.Values{
		"api_type": {"json"},
		"thing_id": {thing},
		"text":     {body},
	}

	resp, err := c.post(ctx, "/api/comment", form)
	if err != nil {
		return fmt.Errorf("comment on %s: %w", thing, err)
	}
	if err := apiErrors(resp); err != nil {
		return fmt.Errorf("comment on %s: %w", thing, err)
	}
	return nil
}

func apiErrors(body []byte) error {
	var errs []error
	gjson.GetBytes(body, "json.errors").ForEach(func(_, e gjson.Result) bool {
		parts := e.Array()
		apiErr := &APIError{}
		if len(parts) > 0 {
			apiErr.Code = parts[0].String()
		}
		if len(parts) > 1 {
			apiErr.Message = parts[1].String()
		}
		if len(parts) > 2 {
			apiErr.Field = parts[2].String()
		}
		errs = append(errs, apiErr)
		return true
	})
	return errors.Join(errs...)
}
