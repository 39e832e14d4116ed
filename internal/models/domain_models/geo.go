package domain_models

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResult is the outcome for one address of a geocoding batch.
type GeocodeResult struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

type DetectionMethod string

const (
	DetectionIP      DetectionMethod = "ip"
	DetectionGPS     DetectionMethod = "gps"
	DetectionUnknown DetectionMethod = "unknown"
)

type GPSCoords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type UserLocation struct {
	Country         string          `json:"country"`
	CountryCode     string          `json:"countryCode"`
	City            string          `json:"city,omitempty"`
	Coords          *GPSCoords      `json:"coords,omitempty"`
	IsChina         bool            `json:"isChina"`
	DetectionMethod DetectionMethod `json:"detectionMethod"`
}
