package model

// Upload describes a file relayed to remote storage. It is never saved locally,
// the remote storage is the only record of uploaded bytes.
type Upload struct {
	OriginalName string `json:"original_filename"` // Sanitized name sent by the client
	FileName     string `json:"filename"`          // Random name used on the remote side
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}
