package domain

type GiftRequest struct {
	Age          int      `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Interests    []string `json:"interests" validate:"required,min=1,dive,required"`
	Occasion     string   `json:"occasion" validate:"required"`
	Budget       float64  `json:"budget" validate:"required,gt=0"`
	Relationship string   `json:"relationship,omitempty"`
	Preferences  string   `json:"additional_preferences,omitempty"`
}
