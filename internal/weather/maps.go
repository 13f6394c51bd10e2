package weather

import "fmt"

const (
	// DefaultMapEmbedURL is the Google Maps endpoint used for embeddable views.
	DefaultMapEmbedURL = "https://maps.google.com/maps"
	mapZoom            = 13
	mapHeight          = 450
)

// MapURL builds the embeddable map URL centered on loc.
func MapURL(baseURL string, loc Location) string {
	if baseURL == "" {
		baseURL = DefaultMapEmbedURL
	}
	return fmt.Sprintf("%s?q=%s&t=&z=%d&ie=UTF8&iwloc=&output=embed", baseURL, loc.Coordinates(), mapZoom)
}

// BuildMapView renders a fixed-size map viewport for loc. It performs no network call.
func BuildMapView(baseURL string, loc Location) string {
	return fmt.Sprintf(
		`<h3>Mapa de %s</h3>`+
			`<iframe width="100%%" height="%d" frameborder="0" style="border:0" src="%s" allowfullscreen></iframe>`,
		escape(loc.DisplayName), mapHeight, escape(MapURL(baseURL, loc)),
	)
}
