package domain

import "time"

// UploadTicket is handed to a client so it can PUT a file straight to object
// storage. The file itself never passes through the API.
type UploadTicket struct {
	ObjectKey   string    `json:"objectKey"`
	UploadURL   string    `json:"uploadUrl"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
