// Package transcribe turns recorded speech into text through an external
// speech to text service.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/goccy/go-json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("transcription service is not configured")

type Transcript struct {
	Text     string    `json:"text"`
	Language lang.Code `json:"language"`
}

// HTTP posts audio as a multipart "file" field to URL and expects a JSON
// body of the form {"text": "...", "language": "en"}.
type HTTP struct {
	URL    string
	Client *http.Client
}

func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Transcribe(ctx context.Context, filename string, audio io.Reader) (Transcript, error) {
	if h == nil || strings.TrimSpace(h.URL) == "" {
		return Transcript{}, ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to create form file: %w", err)
	}
	_, err = io.Copy(part, audio)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to copy audio: %w", err)
	}
	err = mw.Close()
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcript{}, fmt.Errorf("transcription returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var t Transcript
	err = json.NewDecoder(resp.Body).Decode(&t)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to decode transcript: %w", err)
	}
	t.Text = strings.TrimSpace(t.Text)
	if t.Language != lang.Akan {
		t.Language = lang.English
	}
	return t, nil
}
