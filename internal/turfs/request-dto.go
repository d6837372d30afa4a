package turfs

type CreateTurfRequest struct {
	Name       string  `json:"name" binding:"required,min=3,max=150"`
	Address    string  `json:"address" binding:"required,min=5,max=500"`
	Capacity   int     `json:"capacity" binding:"required,min=1,max=100"`
	HourlyRate float64 `json:"hourly_rate" binding:"required,gt=0"`
	Facilities string  `json:"facilities" binding:"omitempty,max=1000"`
	Photo      string  `json:"photo" binding:"omitempty,max=255"`
}

type UpdateTurfRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=3,max=150"`
	Address    *string  `json:"address" binding:"omitempty,min=5,max=500"`
	Capacity   *int     `json:"capacity" binding:"omitempty,min=1,max=100"`
	HourlyRate *float64 `json:"hourly_rate" binding:"omitempty,gt=0"`
	Facilities *string  `json:"facilities" binding:"omitempty,max=1000"`
	Photo      *string  `json:"photo" binding:"omitempty,max=255"`
}

type TurfFilters struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
}
