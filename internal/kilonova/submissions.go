package kilonova

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const statusFinished = "finished"

// Submission is the evaluation state of a submitted solution.
type Submission struct {
	ID     int64   `json:"id"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

func (s *Submission) Finished() bool {
	return s.Status == statusFinished
}

// Points is the score rounded down to whole points.
func (s *Submission) Points() int {
	return int(math.Floor(s.Score))
}

// Submit uploads source code for a problem and returns the submission id.
func (c *Client) Submit(ctx context.Context, token string, problemID uint64, language, filename string, code io.Reader) (int64, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("problem_id", strconv.FormatUint(problemID, 10)); err != nil {
		return 0, fmt.Errorf("building submission: %w", err)
	}
	if err := mw.WriteField("language", language); err != nil {
		return 0, fmt.Errorf("building submission: %w", err)
	}
	part, err := mw.CreateFormFile("code", filename)
	if err != nil {
		return 0, fmt.Errorf("building submission: %w", err)
	}
	if _, err := io.Copy(part, code); err != nil {
		return 0, fmt.Errorf("reading source: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("building submission: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/submissions/submit", nil, &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	authorize(req, token)

	var id int64
	if err := c.doAPI(req, &id); err != nil {
		return 0, fmt.Errorf("submitting: %w", err)
	}
	return id, nil
}

// Submission fetches the current state of a submission.
func (c *Client) Submission(ctx context.Context, id int64) (*Submission, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))

	req, err := c.newRequest(ctx, http.MethodGet, "/api/submissions/getByID", q, nil)
	if err != nil {
		return nil, err
	}

	var sub Submission
	if err := c.doAPI(req, &sub); err != nil {
		return nil, fmt.Errorf("fetching submission %d: %w", id, err)
	}
	sub.ID = id
	return &sub, nil
}

// WaitForSubmission polls every interval until the submission is finished or
// ctx ends.
func (c *Client) WaitForSubmission(ctx context.Context, id int64, interval time.Duration) (*Submission, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sub, err := c.Submission(ctx, id)
		if err != nil {
			return nil, err
		}
		if sub.Finished() {
			return sub, nil
		}

		select {
		case <-ctx.Done():
			return sub, fmt.Errorf("waiting for submission %d: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}
