package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage = "image/"

	// MaxImageSize caps course image uploads.
	MaxImageSize = 5 << 20
)

var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ChoiceFieldPrefix marks exam form fields carrying a selected choice ID.
const ChoiceFieldPrefix = "choice"

// TopCourseLimit is how many courses the course list shows.
const TopCourseLimit = 10
