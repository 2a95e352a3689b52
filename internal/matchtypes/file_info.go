package matchtypes

// FileInfo describes an uploaded file and how to reach it.
type FileInfo struct {
	URL      string `json:"url"`      // publicly reachable file URL
	Path     string `json:"path"`     // path or identifier inside the storage system
	Size     int64  `json:"size"`     // file size in bytes
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName"` // original file name
}
