package quiz

import (
	"bytes"
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oserockets-max/soken-quiz/internal/cache"
	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/store"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

const pdfMIME = "application/pdf"

// Service glues the document store to the AI file service: it makes a
// stored document usable for generation and keeps the resulting handle
// cached so reselecting a document is cheap.
type Service struct {
	store        *store.Drive
	client       *gen.Client
	handles      *cache.Handles
	pollInterval time.Duration
	pollMax      int
}

func NewService(st *store.Drive, client *gen.Client, handles *cache.Handles, pollInterval time.Duration, pollMax int) *Service {
	return &Service{store: st, client: client, handles: handles, pollInterval: pollInterval, pollMax: pollMax}
}

// ListDocuments lists the store folder.
func (s *Service) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return s.store.List(ctx)
}

// LoadDocument makes a stored document ready for generation, blocking until
// the file service reports a terminal state. Store and registration errors
// both halt the load; the session keeps its previous document.
func (s *Service) LoadDocument(ctx context.Context, docID, displayName string) (gen.Handle, error) {
	if h, ok := s.handles.Get(ctx, docID); ok {
		return h, nil
	}

	data, err := s.store.Fetch(ctx, docID)
	if err != nil {
		return gen.Handle{}, err
	}

	h, err := s.client.RegisterDocument(ctx, displayName, data, pdfMIME, s.pollInterval, s.pollMax)
	if err != nil {
		return gen.Handle{}, err
	}

	s.handles.Put(ctx, docID, h)
	return h, nil
}

// UploadDocument stores a new PDF and registers it with the file service in
// parallel; both must succeed for the upload to count.
func (s *Service) UploadDocument(ctx context.Context, displayName string, data []byte) (string, gen.Handle, error) {
	var (
		docID  string
		handle gen.Handle
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.store.Store(gctx, displayName, bytes.NewReader(data))
		if err != nil {
			return err
		}
		docID = id
		return nil
	})
	g.Go(func() error {
		h, err := s.client.RegisterDocument(gctx, displayName, data, pdfMIME, s.pollInterval, s.pollMax)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", gen.Handle{}, err
	}

	s.handles.Put(ctx, docID, handle)
	log := telemetry.L().With().Str("doc_id", docID).Str("name", displayName).Logger()
	log.Info().Msg("document_uploaded")
	return docID, handle, nil
}
