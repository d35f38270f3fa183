package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

var (
	// ErrFileFailed means the service reported a terminal failed state.
	ErrFileFailed = errors.New("document processing failed")
	// ErrFileNotReady means polling stopped before a terminal state.
	ErrFileNotReady = errors.New("document not ready after polling")
)

// Handle is the AI-side reference to a registered document, passed as a
// content part on generation and grading calls.
type Handle struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	MIME string `json:"mime"`
}

// Part converts the handle into a generation content part.
func (h Handle) Part() genai.Part {
	return genai.FileData{URI: h.URI, MIMEType: h.MIME}
}

// fileStatus lets tests drive the poll loop without the live service.
type fileStatus func(ctx context.Context, name string) (*genai.File, error)

// RegisterDocument uploads raw bytes to the file service and blocks until
// the file reaches a terminal state. The poll is bounded: interval*maxPolls
// caps the wait even if the service never settles.
func (c *Client) RegisterDocument(ctx context.Context, displayName string, data []byte, mime string, interval time.Duration, maxPolls int) (Handle, error) {
	log := telemetry.L().With().Str("doc", displayName).Logger()

	f, err := c.ai.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: displayName,
		MIMEType:    mime,
	})
	if err != nil {
		log.Error().Err(err).Msg("file_upload_failed")
		return Handle{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	f, err = waitActive(ctx, c.ai.GetFile, f, interval, maxPolls)
	if err != nil {
		return Handle{}, err
	}

	log.Info().Str("file", f.Name).Msg("file_registered")
	return Handle{Name: f.Name, URI: f.URI, MIME: f.MIMEType}, nil
}

func waitActive(ctx context.Context, status fileStatus, f *genai.File, interval time.Duration, maxPolls int) (*genai.File, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 30
	}

	for i := 0; ; i++ {
		switch f.State {
		case genai.FileStateActive:
			return f, nil
		case genai.FileStateFailed:
			return nil, ErrFileFailed
		}
		if i >= maxPolls {
			return nil, ErrFileNotReady
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrFileNotReady, ctx.Err())
		case <-time.After(interval):
		}

		var err error
		f, err = status(ctx, f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
}

// DeleteDocument removes a registered file. Best effort on cleanup paths.
func (c *Client) DeleteDocument(ctx context.Context, name string) error {
	return c.ai.DeleteFile(ctx, name)
}
