package slack

import (
	"strings"

	libslack "github.com/slack-go/slack"
)

// DefaultFileName is used when an attachment carries no name
const DefaultFileName = "image"

// File is the attachment metadata needed to import a file
type File struct {
	ID                 string
	Name               string
	Mimetype           string
	URLPrivate         string
	URLPrivateDownload string
}

// NewFileFromSlack creates a File from a slack-go File struct
func NewFileFromSlack(f libslack.File) File {
	return File{
		ID:                 f.ID,
		Name:               f.Name,
		Mimetype:           f.Mimetype,
		URLPrivate:         f.URLPrivate,
		URLPrivateDownload: f.URLPrivateDownload,
	}
}

// IsImage reports whether the content type indicates an image
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.Mimetype), "image/")
}

// DownloadURL returns the bearer-authenticated download URL, preferring url_private_download
func (f File) DownloadURL() string {
	if f.URLPrivateDownload != "" {
		return f.URLPrivateDownload
	}
	return f.URLPrivate
}

// DisplayName returns the original file name or a generic one
func (f File) DisplayName() string {
	if strings.TrimSpace(f.Name) == "" {
		return DefaultFileName
	}
	return f.Name
}
