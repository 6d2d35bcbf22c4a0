package models

import "time"

// File is the metadata row for an uploaded blob. The bytes themselves live
// in object storage under StorageKey, which is generated independently of the
// display name so equally named uploads never collide.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	// MimeType is the content type declared at upload.
	MimeType string `json:"mimeType"`
	// StorageKey addresses the blob in object storage. Never exposed to clients.
	StorageKey string `json:"-"`
	// ThumbnailKey, when set, addresses a generated image preview.
	ThumbnailKey *string   `json:"-"`
	UserID       string    `json:"userId"`
	FolderID     *string   `json:"folderId"`
	CreatedAt    time.Time `json:"createdAt"`
}
