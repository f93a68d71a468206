package documentfile

import "errors"

var (
	ErrNotFound        = errors.New("document file not found")
	ErrUnsupportedType = errors.New("unsupported document file type")
)

// AllowedTypes lists the receipt formats accepted for upload.
var AllowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// DocumentFile is an uploaded receipt, stored inline.
type DocumentFile struct {
	ID      int
	UID     string
	OwnerID int
	Name    string
	Type    string
	Data    []byte
}

func TypeAllowed(contentType string) bool {
	for _, allowed := range AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
