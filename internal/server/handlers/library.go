package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/models"
	"github.com/dmitrijs2005/flourish/internal/server/pictures"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/library"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/plants"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
)

const maxNickname = 64

func checkNickname(n string) (string, error) {
	n = strings.TrimSpace(n)
	if n == "" {
		return "", invalid("nickname is required")
	}
	if len(n) > maxNickname {
		return "", invalid("nickname is longer than %d bytes", maxNickname)
	}
	return n, nil
}

// GetLibraryHandler lists the signed-in user's plants with catalog data.
type GetLibraryHandler struct {
	base
	library library.Repository
}

func NewGetLibraryHandler(lib library.Repository, l logging.Logger) *GetLibraryHandler {
	return &GetLibraryHandler{base: newBase(protocol.GetLibrary, l), library: lib}
}

func (h *GetLibraryHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	entries, err := h.library.ListByUser(ctx, userID)
	if err != nil {
		return h.fail(ctx, err)
	}

	resp := h.ok()
	resp.Library = make([]protocol.LibraryEntry, 0, len(entries))
	for i := range entries {
		resp.Library = append(resp.Library, toEntry(&entries[i]))
	}
	resp.Count = int64(len(entries))
	return resp
}

// SavePlantHandler adds a catalog species to the user's library. Without a
// nickname the species' common name is used.
type SavePlantHandler struct {
	base
	plants  plants.Repository
	library library.Repository
	now     func() time.Time
}

func NewSavePlantHandler(p plants.Repository, lib library.Repository, now func() time.Time, l logging.Logger) *SavePlantHandler {
	return &SavePlantHandler{base: newBase(protocol.SavePlant, l), plants: p, library: lib, now: now}
}

func (h *SavePlantHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.PlantID <= 0 {
		return h.fail(ctx, invalid("plant_id is required"))
	}
	watered, err := parseDay(req.Date, h.now(), true)
	if err != nil {
		return h.fail(ctx, err)
	}

	plant, err := h.plants.GetByID(ctx, req.PlantID)
	if err != nil {
		return h.fail(ctx, err)
	}

	name := req.NewNickname
	if strings.TrimSpace(name) == "" {
		name = plant.CommonName
		if name == "" {
			name = plant.ScientificName
		}
	}
	if name, err = checkNickname(name); err != nil {
		return h.fail(ctx, err)
	}

	entry, err := h.library.Create(ctx, &models.LibraryEntry{
		UserID:      userID,
		PlantID:     plant.ID,
		Nickname:    name,
		LastWatered: watered,
		PictureURL:  strings.TrimSpace(req.PictureURL),
	})
	if err != nil {
		return h.fail(ctx, err)
	}
	entry.Plant = *plant

	resp := h.ok()
	e := toEntry(entry)
	resp.Entry = &e
	return resp
}

// DeletePlantHandler removes one entry. Removing an absent entry succeeds
// with a zero count.
type DeletePlantHandler struct {
	base
	library library.Repository
}

func NewDeletePlantHandler(lib library.Repository, l logging.Logger) *DeletePlantHandler {
	return &DeletePlantHandler{base: newBase(protocol.DeletePlant, l), library: lib}
}

func (h *DeletePlantHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.EntryID <= 0 {
		return h.fail(ctx, invalid("entry_id is required"))
	}
	existed, err := h.library.Delete(ctx, userID, req.EntryID)
	if err != nil {
		return h.fail(ctx, err)
	}
	resp := h.ok()
	if existed {
		resp.Count = 1
	}
	return resp
}

// ChangeNicknameHandler renames one library entry.
type ChangeNicknameHandler struct {
	base
	library library.Repository
}

func NewChangeNicknameHandler(lib library.Repository, l logging.Logger) *ChangeNicknameHandler {
	return &ChangeNicknameHandler{base: newBase(protocol.ChangeNickname, l), library: lib}
}

func (h *ChangeNicknameHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.EntryID <= 0 {
		return h.fail(ctx, invalid("entry_id is required"))
	}
	name, err := checkNickname(req.NewNickname)
	if err != nil {
		return h.fail(ctx, err)
	}
	if err := h.library.UpdateNickname(ctx, userID, req.EntryID, name); err != nil {
		return h.fail(ctx, err)
	}
	resp := h.ok()
	resp.NewNickname = name
	return resp
}

// ChangeLastWateredHandler records the day one entry was last watered.
type ChangeLastWateredHandler struct {
	base
	library library.Repository
	now     func() time.Time
}

func NewChangeLastWateredHandler(lib library.Repository, now func() time.Time, l logging.Logger) *ChangeLastWateredHandler {
	return &ChangeLastWateredHandler{base: newBase(protocol.ChangeLastWatered, l), library: lib, now: now}
}

func (h *ChangeLastWateredHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.EntryID <= 0 {
		return h.fail(ctx, invalid("entry_id is required"))
	}
	day, err := parseDay(req.Date, h.now(), false)
	if err != nil {
		return h.fail(ctx, err)
	}
	if err := h.library.UpdateLastWatered(ctx, userID, req.EntryID, day); err != nil {
		return h.fail(ctx, err)
	}
	resp := h.ok()
	resp.Date = day.Format(protocol.DateLayout)
	return resp
}

// ChangeAllToWateredHandler marks every entry of the user as watered on the
// given day (today by default) in a single transaction.
type ChangeAllToWateredHandler struct {
	base
	uow repomanager.UnitOfWork
	now func() time.Time
}

func NewChangeAllToWateredHandler(uow repomanager.UnitOfWork, now func() time.Time, l logging.Logger) *ChangeAllToWateredHandler {
	return &ChangeAllToWateredHandler{base: newBase(protocol.ChangeAllToWatered, l), uow: uow, now: now}
}

func (h *ChangeAllToWateredHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	day, err := parseDay(req.Date, h.now(), true)
	if err != nil {
		return h.fail(ctx, err)
	}

	var n int64
	err = h.uow.Do(ctx, func(ctx context.Context, repos *repomanager.Repositories) error {
		var err error
		n, err = repos.Library.MarkAllWatered(ctx, userID, day)
		return err
	})
	if err != nil {
		return h.fail(ctx, err)
	}

	resp := h.ok()
	resp.Count = n
	resp.Date = day.Format(protocol.DateLayout)
	return resp
}

// ChangePlantPictureHandler sets an entry's picture. With Upload set the
// server allocates an object key and returns a presigned upload URL.
type ChangePlantPictureHandler struct {
	base
	library  library.Repository
	pictures pictures.Store
}

// NewChangePlantPictureHandler accepts a nil store; uploads are then refused.
func NewChangePlantPictureHandler(lib library.Repository, store pictures.Store, l logging.Logger) *ChangePlantPictureHandler {
	return &ChangePlantPictureHandler{base: newBase(protocol.ChangePlantPicture, l), library: lib, pictures: store}
}

func (h *ChangePlantPictureHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.EntryID <= 0 {
		return h.fail(ctx, invalid("entry_id is required"))
	}

	resp := h.ok()
	picture := strings.TrimSpace(req.PictureURL)
	if req.Upload {
		if h.pictures == nil {
			return h.fail(ctx, invalid("picture uploads are not available"))
		}
		key, url, err := h.pictures.PresignUpload(ctx, userID)
		if err != nil {
			return h.fail(ctx, err)
		}
		picture = key
		resp.UploadURL = url
	} else if picture == "" {
		return h.fail(ctx, invalid("picture_url or upload is required"))
	}

	if err := h.library.UpdatePicture(ctx, userID, req.EntryID, picture); err != nil {
		return h.fail(ctx, err)
	}
	resp.PictureURL = picture
	return resp
}
