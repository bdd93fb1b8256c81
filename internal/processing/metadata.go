package processing

import "time"

// Source kinds for indexed documents.
const (
	SourceLocal  = "local"
	SourceWeb    = "web"
	SourceGDrive = "gdrive"
)

type Metadata struct {
	Path       string
	Source     string
	ImportedAt time.Time
	Title      string
}
