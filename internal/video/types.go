package video

import "time"

// Record is one ingested video. Records are created once by ingestion and
// never updated.
type Record struct {
	ID           string    `json:"id"`
	FileID       string    `json:"file_id"`
	FileUniqueID string    `json:"file_unique_id"`
	ThumbnailID  string    `json:"thumbnail_id"`
	MimeType     string    `json:"mime_type"`
	FileSize     int64     `json:"file_size"`
	Caption      *string   `json:"caption"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Duration     *int      `json:"duration"`
	ChannelTitle *string   `json:"channel_title"`
}
