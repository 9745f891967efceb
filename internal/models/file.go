package models

import "time"

// File is an uploaded object owned by an account.
type File struct {
	ID          string    `json:"id"`
	AccountID   int64     `json:"account_id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ObjectKey   string    `json:"-"` // key inside the storage bucket
}

// URL is the public download path of the file.
func (f *File) URL() string {
	return "/f/" + f.ID
}
