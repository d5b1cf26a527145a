package dto

type GeocodeResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ReverseGeocodeResponse struct {
	Address string `json:"address"`
}

type PlaceCandidate struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type PlaceSearchResponse struct {
	Places []PlaceCandidate `json:"places"`
}
