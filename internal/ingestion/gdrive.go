package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveConfig selects how the Drive client authenticates. A credentials
// file (service account or authorized user JSON) wins over a bare token.
type DriveConfig struct {
	CredentialsFile string
	AccessToken     string
}

// Document is one piece of loaded text ready for indexing.
type Document struct {
	Name   string
	Source string
	Text   string
}

// DriveLoader reads the files of a Google Drive folder as text.
type DriveLoader struct {
	service *drive.Service
}

func NewDriveLoader(ctx context.Context, cfg DriveConfig, opts ...option.ClientOption) (*DriveLoader, error) {
	var ts oauth2.TokenSource
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse drive credentials: %w", err)
		}
		ts = creds.TokenSource
	case cfg.AccessToken != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	}
	if ts != nil {
		opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	} else if len(opts) == 0 {
		return nil, errors.New("drive loader needs a credentials file or access token")
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveLoader{service: svc}, nil
}

// exportType maps Google Workspace types to the plain format they are
// exported as. Types absent here are downloaded as stored.
var exportType = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.presentation": "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
}

// extFor returns the local extension used to extract a downloaded file,
// or "" when the type cannot be indexed.
func extFor(mimeType, name string) string {
	switch mimeType {
	case "text/plain", "text/csv":
		return ".txt"
	case "text/markdown":
		return ".md"
	case "text/html":
		return ".html"
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	if _, ok := exportType[mimeType]; ok {
		return ".txt"
	}
	if ext := strings.ToLower(filepath.Ext(name)); supported(ext) {
		return ext
	}
	return ""
}

type driveFile struct {
	id, name, mimeType string
}

// quoteQuery escapes s for use inside a single-quoted Drive query string.
func quoteQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func (l *DriveLoader) list(ctx context.Context, folderID string) ([]driveFile, error) {
	var files []driveFile
	pageToken := ""
	for {
		call := l.service.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed = false", quoteQuery(folderID))).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
		}
		for _, f := range r.Files {
			files = append(files, driveFile{id: f.Id, name: f.Name, mimeType: f.MimeType})
		}
		if r.NextPageToken == "" {
			return files, nil
		}
		pageToken = r.NextPageToken
	}
}

// Load returns the text of every indexable file in the folder. Files that
// fail to download or extract are reported through skip and left out.
func (l *DriveLoader) Load(ctx context.Context, folderID string, skip func(name string, err error)) ([]Document, error) {
	files, err := l.list(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, f := range files {
		ext := extFor(f.mimeType, f.name)
		if ext == "" {
			continue
		}
		text, err := l.fetch(ctx, f, ext)
		if err != nil {
			if skip != nil {
				skip(f.name, err)
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Name: f.name, Source: "gdrive://" + f.id, Text: text})
	}
	return docs, nil
}

func (l *DriveLoader) fetch(ctx context.Context, f driveFile, ext string) (string, error) {
	var body io.ReadCloser
	if target, ok := exportType[f.mimeType]; ok {
		resp, err := l.service.Files.Export(f.id, target).Context(ctx).Download()
		if err != nil {
			return "", fmt.Errorf("export %s: %w", f.name, err)
		}
		body = resp.Body
	} else {
		resp, err := l.service.Files.Get(f.id).Context(ctx).Download()
		if err != nil {
			return "", fmt.Errorf("download %s: %w", f.name, err)
		}
		body = resp.Body
	}
	defer body.Close()

	switch ext {
	case ".txt", ".md":
		b, err := io.ReadAll(io.LimitReader(body, maxPageBytes))
		return string(b), err
	case ".html":
		return HTMLText(io.LimitReader(body, maxPageBytes))
	}

	// PDFs and images go through the file extractors.
	tmp, err := os.CreateTemp("", "rag-drive-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return ExtractText(tmp.Name())
}
