package dto

type ProductFilters struct {
	CategoryID  string
	IsActive    *bool
	HasGifts    *bool
	IsFlagship  *bool
	SearchQuery string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}
