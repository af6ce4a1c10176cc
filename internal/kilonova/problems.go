package kilonova

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// ProblemSummary is one row of the problem search.
type ProblemSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// searchSelector matches the element the problems page embeds its results in,
// as base64-encoded JSON.
const searchSelector = "kn-pb-search[enc]"

// SearchProblems returns one page of problems matching query. Pages are
// 1-based.
func (c *Client) SearchProblems(ctx context.Context, query string, page int) ([]ProblemSummary, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))

	req, err := c.newRequest(ctx, http.MethodGet, "/problems", q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing problems page: %w", err)
	}
	enc, ok := doc.Find(searchSelector).First().Attr("enc")
	if !ok {
		return nil, fmt.Errorf("problems page has no %s element", searchSelector)
	}
	return decodeSummaries(enc)
}

func decodeSummaries(enc string) ([]ProblemSummary, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	var summaries []ProblemSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return summaries, nil
}

type attachment struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// StatementFile is the attachment name of a statement in lang.
func StatementFile(lang string) string {
	return "statement-" + lang + ".md"
}

// Statement fetches the markdown statement of a problem in lang. A problem
// without such a statement yields ErrStatementNotFound.
func (c *Client) Statement(ctx context.Context, id uint64, lang string) (string, error) {
	path := fmt.Sprintf("/api/problem/%d/get/attachmentByName/%s", id, url.PathEscape(StatementFile(lang)))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}

	var att attachment
	err = c.doAPI(req, &att)
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &apiErr):
		return "", fmt.Errorf("problem %d (%s): %w", id, lang, ErrStatementNotFound)
	case err != nil:
		return "", err
	}

	text, err := base64.StdEncoding.DecodeString(att.Data)
	if err != nil {
		return "", fmt.Errorf("problem %d (%s): decoding statement: %w", id, lang, err)
	}
	return string(text), nil
}

// FindStatement tries langs in order and returns the first statement found
// together with its language.
func (c *Client) FindStatement(ctx context.Context, id uint64, langs []string) (text, lang string, err error) {
	for _, lang := range langs {
		text, err := c.Statement(ctx, id, lang)
		if err == nil {
			return text, lang, nil
		}
		if !errors.Is(err, ErrStatementNotFound) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("problem %d: %w", id, ErrStatementNotFound)
}
