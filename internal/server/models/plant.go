package models

// Plant is a species catalog row. The catalog is filled by a separate
// import job; the server only reads it.
type Plant struct {
	ID             int64  `db:"id"`
	CommonName     string `db:"common_name"`
	ScientificName string `db:"scientific_name"`
	Genus          string `db:"genus"`
	Family         string `db:"family"`
	ImageURL       string `db:"image_url"`
	// Light is the light requirement on a 0-10 scale, -1 when unknown.
	Light int `db:"light"`
	// WaterFrequency is the catalog watering need on a 0-10 scale, -1 when unknown.
	WaterFrequency int `db:"water_frequency"`
}

// WateringIntervalDays maps the catalog watering need to a recommended
// number of days between waterings.
func (p *Plant) WateringIntervalDays() int {
	switch {
	case p.WaterFrequency < 0:
		return -1
	case p.WaterFrequency <= 2:
		return 14
	case p.WaterFrequency <= 4:
		return 10
	case p.WaterFrequency <= 6:
		return 7
	case p.WaterFrequency <= 8:
		return 4
	default:
		return 2
	}
}
