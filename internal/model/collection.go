package model

type Collection struct {
	ID               string `json:"id"`
	OwnerID          string `json:"owner_id"`
	Name             string `json:"name"`
	DatePubli        string `json:"date_publi,omitempty"`
	IsOwnerChallenge bool   `json:"is_owner_challenge"`
	IsMainChallenge  bool   `json:"is_main_challenge"`
}

type GetListCollectionRequest struct {
	PublishState string   `json:"publish_state"`
	OwnerID      []string `json:"owner_id"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListCollectionResponse struct {
	Collections []Collection `json:"collections"`
}
