package turfs

type TurfListResponse struct {
	Turfs      []Turf `json:"turfs"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}
