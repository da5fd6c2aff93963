package model

type Owner struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	IsPublished bool   `json:"is_published"`
}

type GetListOwnerRequest struct {
	PublishState string `json:"publish_state"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListOwnerResponse struct {
	Owners []Owner `json:"owners"`
}
