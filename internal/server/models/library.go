package models

import "time"

// LibraryEntry is one plant in a user's personal library.
type LibraryEntry struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	PlantID     int64     `db:"plant_id"`
	Nickname    string    `db:"nickname"`
	LastWatered time.Time `db:"last_watered"`
	PictureURL  string    `db:"picture_url"`
	CreatedAt   time.Time `db:"created_at"`

	// Plant is filled when the entry is read joined with the catalog.
	Plant Plant `db:"plant"`
}
