package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"chatrelay/internal/models"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 1 << 20

// send posts req, retrying transport failures and 5xx answers. Other
// non-2xx answers end the loop at once as a *ServerError. Running out of
// attempts yields a *TransportError. A 2xx body that does not decode is an
// empty response, not an error.
func (c *Client) send(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.logger.Printf("attempt %d/%d failed (%v), retrying in %s", attempt, c.maxAttempts, lastErr, delay)
			if err := c.sleep(ctx, delay); err != nil {
				return models.ChatResponse{}, &TransportError{Attempts: attempt, Err: err}
			}
		}

		resp, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}

		var serverErr *ServerError
		if errors.As(err, &serverErr) && !serverErr.Temporary() {
			return models.ChatResponse{}, err
		}
		lastErr = err
	}

	return models.ChatResponse{}, &TransportError{Attempts: c.maxAttempts, Err: lastErr}
}

func (c *Client) post(ctx context.Context, body []byte) (models.ChatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.ChatResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Session-ID", c.sessionID.String())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.ChatResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return models.ChatResponse{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ChatResponse{}, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(data),
		}
	}

	return decodeChatResponse(data), nil
}

// decodeChatResponse never fails: anything that is not a JSON object
// with a string "response" is treated as an empty reply.
func decodeChatResponse(data []byte) models.ChatResponse {
	var out models.ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return models.ChatResponse{}
	}
	return out
}

// decodeErrorMessage accepts {"error": "text"} as well as the nested
// {"error": {"message": "text"}} shape some proxies return.
func decodeErrorMessage(data []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Error, &text); err == nil {
		return text
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
