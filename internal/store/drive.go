package store

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

const pdfMIME = "application/pdf"

// Document is one entry in the shared folder.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Drive is the external document store: one shared folder of PDFs,
// accessed with a service account. Errors here are reported to the caller
// and halt the user action; there is no silent retry at this boundary.
type Drive struct {
	svc      *drive.Service
	folderID string
}

// NewDrive builds the client from service-account JSON. The account email
// is logged so a misconfigured folder share is diagnosable: that address
// must have access to the folder.
func NewDrive(ctx context.Context, credentialsJSON []byte, folderID string) (*Drive, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}

	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	log := telemetry.L().With().Str("service_account", jwtCfg.Email).Str("folder", folderID).Logger()
	log.Info().Msg("drive_connected")
	return &Drive{svc: svc, folderID: folderID}, nil
}

// List returns the PDFs in the folder.
func (d *Drive) List(ctx context.Context) ([]Document, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", d.folderID, pdfMIME)
	r, err := d.svc.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, 0, len(r.Files))
	for _, f := range r.Files {
		docs = append(docs, Document{ID: f.Id, Name: f.Name})
	}
	return docs, nil
}

// Fetch downloads a document's content.
func (d *Drive) Fetch(ctx context.Context, id string) ([]byte, error) {
	resp, err := d.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", id, err)
	}
	return data, nil
}

// Store uploads a new PDF into the folder and returns its id.
func (d *Drive) Store(ctx context.Context, displayName string, r io.Reader) (string, error) {
	meta := &drive.File{Name: displayName, Parents: []string{d.folderID}}
	f, err := d.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(pdfMIME)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("store document %s: %w", displayName, err)
	}

	log := telemetry.L().With().Str("doc_id", f.Id).Str("name", displayName).Logger()
	log.Info().Msg("document_stored")
	return f.Id, nil
}
