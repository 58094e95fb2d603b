package dto

// OpenSessionRequest starts a grading session for one assignment.
type OpenSessionRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	AssignmentID string `json:"assignment_id" validate:"required"`
}

// SetAnswerKeyRequest replaces the session's active answer key source. An
// empty value is allowed; it simply makes the session ungradeable until a
// usable key is supplied.
type SetAnswerKeyRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=url text"`
	Value string `json:"value"`
}

// ExportResponse references the spreadsheet the grades were exported to.
type ExportResponse struct {
	DestinationURL string `json:"destination_url"`
	Count          int    `json:"count"`
}
