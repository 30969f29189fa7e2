package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/auth"
	"github.com/dmitrijs2005/flourish/internal/server/models"
	"github.com/dmitrijs2005/flourish/internal/timex"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// describe turns a validator failure into a client-facing validation error.
func describe(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return invalid("%v", err)
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, strings.ToLower(fe.Field())+" fails "+fe.Tag())
	}
	return invalid("%s", strings.Join(parts, ", "))
}

// checkPassword enforces the hasher's byte limit; the validator's max tag
// counts runes.
func checkPassword(pw string) error {
	if len(pw) > auth.MaxPasswordBytes {
		return auth.ErrPasswordTooLong
	}
	return nil
}

// parseDay reads a wire date, or returns today when s is empty and
// defaultToday is set.
func parseDay(s string, now time.Time, defaultToday bool) (time.Time, error) {
	if s == "" {
		if defaultToday {
			return timex.Today(now.UTC()), nil
		}
		return time.Time{}, invalid("date is required")
	}
	day, err := time.Parse(protocol.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("date must look like %s", protocol.DateLayout)
	}
	return day, nil
}

func toUser(u *models.User) *protocol.User {
	return &protocol.User{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		NotificationsEnabled: u.NotificationsEnabled,
		FunFactsEnabled:      u.FunFactsEnabled,
	}
}

func toPlant(p *models.Plant) protocol.Plant {
	return protocol.Plant{
		ID:             p.ID,
		CommonName:     p.CommonName,
		ScientificName: p.ScientificName,
		ImageURL:       p.ImageURL,
	}
}

func toDetails(p *models.Plant) *protocol.PlantDetails {
	return &protocol.PlantDetails{
		PlantID:              p.ID,
		ScientificName:       p.ScientificName,
		CommonName:           p.CommonName,
		Genus:                p.Genus,
		Family:               p.Family,
		Light:                p.Light,
		WaterFrequency:       p.WaterFrequency,
		WateringIntervalDays: p.WateringIntervalDays(),
	}
}

func toEntry(e *models.LibraryEntry) protocol.LibraryEntry {
	return protocol.LibraryEntry{
		ID:                   e.ID,
		Nickname:             e.Nickname,
		LastWatered:          e.LastWatered.Format(protocol.DateLayout),
		PictureURL:           e.PictureURL,
		WateringIntervalDays: e.Plant.WateringIntervalDays(),
		Plant:                toPlant(&e.Plant),
	}
}
