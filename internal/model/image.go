package model

type ImageLock struct {
	Locked       bool    `json:"locked"`
	LockedUserID *string `json:"locked_user_id"`

	// DeltaLastStart is the lock age in seconds, null when unlocked.
	DeltaLastStart *int64 `json:"delta_last_start"`
}

type Image struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	State        string    `json:"state"`
	Lock         ImageLock `json:"lock"`
}

type StartGeoreferencingRequest struct {
	ImageID string `json:"image_id"`
}

type StartGeoreferencingResponse struct{}

type GetImageRequest struct {
	ID string `json:"id"`
}

type GetImageResponse Image

type MarkImageImpossibleRequest struct {
	ImageID string `json:"image_id"`
}

type MarkImageImpossibleResponse struct{}
