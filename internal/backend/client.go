// Package backend holds the HTTP clients the terminal app uses to talk to the API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the API, carrying the server's own message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf reports the HTTP status behind err, or 0 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorFrom reads the message out of whichever of message/detail/error the server used.
func errorFrom(resp *resty.Response) *APIError {
	body := resp.String()
	msg := ""
	for _, path := range []string{"error", "detail", "message"} {
		if v := gjson.Get(body, path); v.Exists() && v.String() != "" {
			msg = v.String()
			break
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(body)
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

func newResty(baseURL string, timeout time.Duration, log *slog.Logger) *resty.Client {
	if log == nil {
		log = slog.Default()
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log: log})
}

// send executes one request and decodes a 2xx body into a T.
func send[T any](ctx context.Context, c *resty.Client, method, path string, body any, query map[string]string) (T, error) {
	var out T
	req := c.R().SetContext(ctx).SetResult(&out)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, errorFrom(resp)
	}
	return out, nil
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct{ log *slog.Logger }

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
