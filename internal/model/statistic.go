package model

type RankingRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	NGeoloc  int    `json:"n_geoloc"`
	NCorr    int    `json:"n_corr"`
	NObs     int    `json:"n_obs"`
}

type GetRankingRequest struct {
	CollectionID string `json:"collection_id"`
	OwnerID      string `json:"owner_id"`
	DateMin      string `json:"date_min"`
	DateMax      string `json:"date_max"`
	OrderBy      string `json:"order_by"`
	OrderDir     string `json:"order_dir"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetRankingResponse struct {
	// Count is the number of users whose selected metric is positive,
	// independent of limit and offset.
	Count int          `json:"count"`
	Rows  []RankingRow `json:"rows"`
}

type GetRankRequest struct {
	UserID       string `json:"user_id"`
	CollectionID string `json:"collection_id"`
	OrderBy      string `json:"order_by"`
}

type GetRankResponse struct {
	Rank uint64 `json:"rank"`
}
