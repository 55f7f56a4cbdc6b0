// Package httpbackend posts a time-off request to the form-processing web
// app (an Apps Script deployment) and decodes its JSON reply.
package httpbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/csg33k/timeoff-request/internal/domain"
)

// replySchema is the contract for a 2xx body. Anything that does not match is
// an unsuccessful reply.
const replySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "message": {"type": "string"}
  }
}`

var compiledReply = jsonschema.MustCompileString("timeoff-reply.json", replySchema)

// maxReplyBytes bounds how much of a response body is read.
const maxReplyBytes = 1 << 20

// Client is the outbound Backend. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client for endpoint. An empty endpoint yields an unconfigured
// client. A nil httpClient uses one with no timeout, so the transport's own
// defaults apply.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{endpoint: strings.TrimSpace(endpoint), http: httpClient}
}

// Configured reports whether an endpoint URL was given.
func (c *Client) Configured() bool { return c.endpoint != "" }

// Endpoint returns the trimmed endpoint URL, or "" when unconfigured.
func (c *Client) Endpoint() string { return c.endpoint }

// Submit posts every field as a multipart/form-data part, in wire order.
func (c *Client) Submit(ctx context.Context, fields domain.FormFields) (domain.BackendReply, error) {
	if !c.Configured() {
		return domain.BackendReply{}, domain.ErrNotConfigured
	}
	body, contentType, err := encode(fields)
	if err != nil {
		return domain.BackendReply{}, fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return domain.BackendReply{}, &domain.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.BackendReply{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
		return domain.BackendReply{}, &domain.HTTPStatusError{StatusCode: resp.StatusCode}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return domain.BackendReply{}, &domain.TransportError{Err: err}
	}
	return decode(raw)
}

func encode(fields domain.FormFields) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range domain.AllFields {
		if err := mw.WriteField(name, fields.Get(name)); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// decode turns a 2xx body into a reply. Only a body that is not JSON at all
// is an error; a JSON value of the wrong shape is an unsuccessful reply.
func decode(raw []byte) (domain.BackendReply, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return domain.BackendReply{}, &domain.MalformedResponseError{Err: err}
	}
	obj, _ := v.(map[string]any)
	msg, _ := obj["message"].(string)
	if err := compiledReply.Validate(v); err != nil {
		return domain.BackendReply{Success: false, Message: msg}, nil
	}
	ok, _ := obj["success"].(bool)
	return domain.BackendReply{Success: ok, Message: msg}, nil
}
