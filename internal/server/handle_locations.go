package server

import (
	"net/http"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

// LocationInfo is the public view of a hunt location. The scan token is
// deliberately kept out of the listing.
type LocationInfo struct {
	Key  string  `json:"key"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
	Fact string  `json:"fact,omitempty"`
	Hint string  `json:"hint,omitempty"`
}

func handleListLocations(catalog *hunt.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("lang")

		locations := catalog.All()
		out := make([]LocationInfo, 0, len(locations))
		for _, l := range locations {
			out = append(out, LocationInfo{
				Key:  l.Key,
				Lat:  l.Lat,
				Lng:  l.Lng,
				Name: l.DisplayName(locale),
				Fact: l.DisplayFact(locale),
				Hint: l.DisplayHint(locale),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
