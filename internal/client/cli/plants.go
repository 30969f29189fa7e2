package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/flourish/internal/filex"
	"github.com/dmitrijs2005/flourish/internal/netx"
	"github.com/dmitrijs2005/flourish/internal/protocol"
)

// Seams for the picture command.
var (
	readFile = filex.ReadPicture
	upload   = netx.UploadToPresignedURL
	todayFn  = time.Now
)

// Search looks species up by name: "search <text>".
func (a *App) Search(ctx context.Context, args []string) error {
	text, err := argOrPrompt(a.reader, args, "Search for", a.out)
	if err != nil {
		return err
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.Search, Search: text})
	if err != nil {
		return err
	}
	if len(resp.Plants) == 0 {
		a.printf("No plants found.\n")
		return nil
	}
	for _, p := range resp.Plants {
		a.printf("  #%d  %s (%s)\n", p.ID, p.CommonName, p.ScientificName)
	}
	return nil
}

// Info shows species details: "info <plant_id>".
func (a *App) Info(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "plant id")
	if err != nil {
		return err
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.GetMorePlantInfo, PlantID: id})
	if err != nil {
		return err
	}
	d := resp.Details
	if d == nil {
		return errNoPayload
	}
	a.printf("%s (%s)\n", d.CommonName, d.ScientificName)
	a.printf("  genus:  %s\n  family: %s\n", d.Genus, d.Family)
	a.printf("  light:  %d/10\n  water:  %d/10, every %d days\n", d.Light, d.WaterFrequency, d.WateringIntervalDays)
	return nil
}

// Library lists the signed-in user's plants.
func (a *App) Library(ctx context.Context, args []string) error {
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.GetLibrary})
	if err != nil {
		return err
	}
	if len(resp.Library) == 0 {
		a.printf("Your library is empty.\n")
		return nil
	}
	for _, e := range resp.Library {
		printEntry(a, e)
	}
	return nil
}

func printEntry(a *App, e protocol.LibraryEntry) {
	a.printf("  [%d] %s - %s, last watered %s, every %d days\n",
		e.ID, e.Nickname, e.Plant.CommonName, e.LastWatered, e.WateringIntervalDays)
}

// Save adds a species to the library: "save <plant_id> [nickname]".
func (a *App) Save(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "plant id")
	if err != nil {
		return err
	}
	resp, err := a.call(ctx, &protocol.Message{
		Type:        protocol.SavePlant,
		PlantID:     id,
		NewNickname: strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	if resp.Entry == nil {
		return errNoPayload
	}
	a.printf("Saved:\n")
	printEntry(a, *resp.Entry)
	return nil
}

// Delete removes a library entry: "delete <entry_id>".
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "entry id")
	if err != nil {
		return err
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.DeletePlant, EntryID: id})
	if err != nil {
		return err
	}
	if resp.Count == 0 {
		a.printf("Nothing to delete.\n")
		return nil
	}
	a.printf("Deleted.\n")
	return nil
}

// Rename changes a nickname: "rename <entry_id> <nickname>".
func (a *App) Rename(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "entry id")
	if err != nil {
		return err
	}
	nickname := strings.Join(args[1:], " ")
	if nickname == "" {
		return fmt.Errorf("nickname is required")
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.ChangeNickname, EntryID: id, NewNickname: nickname})
	if err != nil {
		return err
	}
	a.printf("Renamed to %s.\n", resp.NewNickname)
	return nil
}

// Water records a watering: "water <entry_id> [YYYY-MM-DD]". The date
// defaults to today.
func (a *App) Water(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "entry id")
	if err != nil {
		return err
	}
	date := todayFn().Format(protocol.DateLayout)
	if len(args) > 1 {
		date = args[1]
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.ChangeLastWatered, EntryID: id, Date: date})
	if err != nil {
		return err
	}
	a.printf("Watered on %s.\n", resp.Date)
	return nil
}

// WaterAll marks every plant in the library as watered today.
func (a *App) WaterAll(ctx context.Context, args []string) error {
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.ChangeAllToWatered})
	if err != nil {
		return err
	}
	a.printf("Watered %d plants.\n", resp.Count)
	return nil
}

// Picture sets an entry picture: "picture <entry_id> <url|file>". A local
// file is uploaded through a presigned URL issued by the server.
func (a *App) Picture(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "entry id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("picture url or file is required")
	}
	src := args[1]

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if _, err := a.call(ctx, &protocol.Message{Type: protocol.ChangePlantPicture, EntryID: id, PictureURL: src}); err != nil {
			return err
		}
		a.printf("Picture updated.\n")
		return nil
	}

	body, err := readFile(src)
	if err != nil {
		return fmt.Errorf("read picture: %w", err)
	}
	resp, err := a.call(ctx, &protocol.Message{Type: protocol.ChangePlantPicture, EntryID: id, Upload: true})
	if err != nil {
		return err
	}
	if err := upload(ctx, resp.UploadURL, body); err != nil {
		return fmt.Errorf("upload picture: %w", err)
	}
	a.printf("Picture uploaded as %s\n", resp.PictureURL)
	return nil
}
