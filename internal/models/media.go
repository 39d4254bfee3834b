package models

import "time"

// CloudImage holds the identifiers returned by the image CDN backend for the
// compressed rendition of an upload.
type CloudImage struct {
	PublicID  string `bson:"public_id" json:"publicId"`
	SecureURL string `bson:"secure_url" json:"secureUrl"`
	Width     int    `bson:"width" json:"width"`
	Height    int    `bson:"height" json:"height"`
	Bytes     int64  `bson:"bytes" json:"bytes"`
	Quality   int    `bson:"quality" json:"quality"`
	Format    string `bson:"format" json:"format"`
}

// DriveFile holds the identifiers of the original upload in the cloud
// file-storage backend.
type DriveFile struct {
	FileID      string `bson:"file_id" json:"fileId"`
	ViewURL     string `bson:"view_url" json:"viewUrl"`
	DownloadURL string `bson:"download_url" json:"downloadUrl"`
}

// MediaRecord is one logical media asset replicated to both storage backends.
// The ingestion pipeline is the only writer; everything else references it by ID.
type MediaRecord struct {
	ID         string     `bson:"_id" json:"id"`
	Alt        string     `bson:"alt" json:"alt"`
	Filename   string     `bson:"filename" json:"filename"`
	MimeType   string     `bson:"mime_type" json:"mimeType"`
	CloudImage CloudImage `bson:"cloud_image" json:"cloudinary"`
	DriveFile  DriveFile  `bson:"drive_file" json:"drive"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
}
