package canvas

// Course is an immutable snapshot of one enrolled course as returned by the
// courses listing endpoint.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
	IsFavorite bool   `json:"is_favorite"`
}

// AssignmentGroup is one grading group within a course.
type AssignmentGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is the subset of a created assignment the client cares about.
type Assignment struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// User is the subset of /users/self used by the connectivity probe.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UploadSlot is the pre-signed target returned by the first phase of a file
// upload. The second phase is a direct multipart POST to UploadURL carrying
// UploadParams plus the file bytes.
type UploadSlot struct {
	UploadURL    string            `json:"upload_url"`
	UploadParams map[string]string `json:"upload_params"`
}

// File is the remote file record minted by a completed upload.
type File struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}
