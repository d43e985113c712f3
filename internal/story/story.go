// Package story sends a completed panel triplet to the story service and
// decodes the generated story.
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultMood is sent when no mood is configured.
const DefaultMood = "friendly"

// DefaultTimeout bounds one generation request.
const DefaultTimeout = 90 * time.Second

// ErrPanelCount is returned when Generate is not given exactly three images.
var ErrPanelCount = errors.New("story: exactly 3 panels required")

// Story is the generated text for one triplet.
type Story struct {
	Title    string   `json:"title"`
	Story    string   `json:"story"`
	Panels   []string `json:"panels"`
	Moral    string   `json:"moral"`
	Captions []string `json:"captions,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// Text returns the full story, joining the panel texts when the service did
// not send one.
func (s *Story) Text() string {
	if strings.TrimSpace(s.Story) != "" {
		return s.Story
	}
	return strings.Join(s.Panels, "\n")
}

// Error is a failed generation. Fallback carries the placeholder story some
// services return alongside the error message.
type Error struct {
	Status   int
	Message  string
	Fallback *Story
}

func (e *Error) Error() string {
	if e.Status != 0 && e.Status != http.StatusOK {
		return fmt.Sprintf("story: service returned %d: %s", e.Status, e.Message)
	}
	return "story: " + e.Message
}

// Status reports whether the service is ready to generate.
type Status struct {
	Ready  bool   `json:"ready"`
	Mode   string `json:"mode"`
	Model  string `json:"model"`
	Device string `json:"device"`
	Err    string `json:"err"`
}

// Generator produces a story from encoded panels in story order.
type Generator interface {
	Generate(ctx context.Context, images [][]byte, mood string) (*Story, error)
}

// Client talks to the story service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// NewClient returns a client for the service rooted at endpoint, for example
// http://localhost:8000.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http.DefaultClient,
		timeout:  DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Endpoint returns the service root.
func (c *Client) Endpoint() string { return c.endpoint }

// response is the wire form; error shares the object with the story fields.
type response struct {
	Story
	Error string `json:"error"`
}

// Generate posts the three images as image1..image3 with the mood field and
// decodes the reply. A reply carrying an error message is returned as *Error.
func (c *Client) Generate(ctx context.Context, images [][]byte, mood string) (*Story, error) {
	if len(images) != 3 {
		return nil, ErrPanelCount
	}
	if mood == "" {
		mood = DefaultMood
	}
	body, ctype, err := encodeForm(images, mood)
	if err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/story", body)
	if err != nil {
		return nil, fmt.Errorf("story request: %w", err)
	}
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("story request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read story response: %w", err)
	}
	log.Printf("story: %s %d in %s", req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode story response: %w", err)
	}
	if r.Error != "" {
		fb := r.Story
		return nil, &Error{Status: resp.StatusCode, Message: r.Error, Fallback: &fb}
	}
	s := r.Story
	return &s, nil
}

// Status queries /api/story_status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/story_status", nil)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Status: resp.StatusCode, Message: resp.Status}
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

func encodeForm(images [][]byte, mood string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image%d"; filename="panel%d.png"`, i+1, i+1))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("encode panel %d: %w", i+1, err)
		}
		if _, err := part.Write(img); err != nil {
			return nil, "", fmt.Errorf("encode panel %d: %w", i+1, err)
		}
	}
	if err := w.WriteField("mood", mood); err != nil {
		return nil, "", fmt.Errorf("encode mood: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// errorMessage pulls a detail or error field out of a JSON error body and
// falls back to the HTTP status text.
func errorMessage(raw []byte, status string) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return status
}
