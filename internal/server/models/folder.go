// Package models defines the server-side data model persisted in PostgreSQL.
package models

import "time"

// Folder is a named container owned by a single user. Folders form a forest
// per user: ParentID nil means the folder sits at the user's root.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}
