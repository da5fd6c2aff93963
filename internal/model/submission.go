package model

type Submission struct {
	ID                   int64          `json:"id"`
	Kind                 string         `json:"kind"`
	ImageID              string         `json:"image_id"`
	UserID               string         `json:"user_id"`
	State                string         `json:"state"`
	ValidatorID          string         `json:"validator_id,omitempty"`
	DateCreated          string         `json:"date_created"`
	DateValidated        string         `json:"date_validated,omitempty"`
	Remark               string         `json:"remark,omitempty"`
	PreviousSubmissionID int64          `json:"previous_submission_id,omitempty"`
	Payload              map[string]any `json:"payload,omitempty"`
}

type SubmitRequest struct {
	Kind    string         `json:"kind"`
	ImageID string         `json:"image_id"`
	Payload map[string]any `json:"payload"`
}

type SubmitResponse struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
}

type ReviewRequest struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
	Remark string `json:"remark"`

	// UpdatedPayload lets a reviewer accept a modified version of a
	// correction, superseding the reviewed record.
	UpdatedPayload map[string]any `json:"updated_payload"`
}

type ReviewResponse struct {
	State string `json:"state"`

	// NewSubmissionID is set when the review created a chained record.
	NewSubmissionID int64 `json:"new_submission_id,omitempty"`
}

type GetSubmissionRequest struct {
	ID int64 `json:"id"`
}

type GetSubmissionResponse Submission

type GetListSubmissionRequest struct {
	State        []string `json:"state"`
	OwnerID      string   `json:"owner_id"`
	VolunteerID  string   `json:"volunteer_id"`
	CollectionID string   `json:"collection_id"`
	ImageID      string   `json:"image_id"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListSubmissionResponse struct {
	Submissions []Submission `json:"submissions"`
}
