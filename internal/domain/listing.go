package domain

// Listing is one real product returned by a marketplace search.
type Listing struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	URL      string  `json:"url"`
	Image    string  `json:"image"`
	Rating   float64 `json:"rating"`
	Category string  `json:"category,omitempty"`
}

// Usable reports whether the listing carries enough data to be ranked.
// A listing with neither a price nor a URL is excluded before ranking.
func (l Listing) Usable() bool {
	return l.Price > 0 || l.URL != ""
}
