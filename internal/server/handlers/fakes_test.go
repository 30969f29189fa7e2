package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/server/models"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for the database behind all four
// repositories. Transactions are serialized and roll back by snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users     map[int64]models.User
	plants    map[int64]models.Plant
	entries   map[int64]models.LibraryEntry
	tokens    map[string]models.PasswordResetToken
	nextUser  int64
	nextEntry int64

	// fail makes the named operation return the error.
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]models.User{},
		plants:  map[int64]models.Plant{},
		entries: map[int64]models.LibraryEntry{},
		tokens:  map[string]models.PasswordResetToken{},
		fail:    map[string]error{},
	}
}

func (s *memStore) check(op string) error {
	if err, ok := s.fail[op]; ok {
		return err
	}
	return nil
}

func (s *memStore) repos() *repomanager.Repositories {
	return &repomanager.Repositories{
		Users:       memUsers{s},
		Plants:      memPlants{s},
		Library:     memLibrary{s},
		ResetTokens: memTokens{s},
	}
}

type memSnapshot struct {
	users     map[int64]models.User
	entries   map[int64]models.LibraryEntry
	tokens    map[string]models.PasswordResetToken
	nextUser  int64
	nextEntry int64
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{cloneMap(s.users), cloneMap(s.entries), cloneMap(s.tokens), s.nextUser, s.nextEntry}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.entries, s.tokens = snap.users, snap.entries, snap.tokens
	s.nextUser, s.nextEntry = snap.nextUser, snap.nextEntry
}

type memUoW struct{ s *memStore }

func (u memUoW) Do(ctx context.Context, fn func(ctx context.Context, repos *repomanager.Repositories) error) error {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()
	snap := u.s.snapshot()
	if err := fn(ctx, u.s.repos()); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if x.Username == u.Username || strings.EqualFold(x.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return u, nil
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.Get"); err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if match(x) {
			u := x
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r memUsers) GetByUsername(ctx context.Context, name string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == name })
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) ExistsByUsername(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByUsername(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r memUsers) update(id int64, op string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(op); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

func (r memUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(id, "users.UpdatePassword", func(u *models.User) { u.PasswordHash = hash })
}

func (r memUsers) SetNotifications(ctx context.Context, id int64, on bool) error {
	return r.update(id, "users.SetNotifications", func(u *models.User) { u.NotificationsEnabled = on })
}

func (r memUsers) SetFunFacts(ctx context.Context, id int64, on bool) error {
	return r.update(id, "users.SetFunFacts", func(u *models.User) { u.FunFactsEnabled = on })
}

func (r memUsers) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	for _, e := range r.s.entries {
		if e.UserID == id {
			return common.ErrorReferenceMissing
		}
	}
	delete(r.s.users, id)
	return nil
}

type memPlants struct{ s *memStore }

func (r memPlants) Search(ctx context.Context, text string, limit int) ([]models.Plant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("plants.Search"); err != nil {
		return nil, err
	}
	text = strings.ToLower(text)
	out := []models.Plant{}
	for _, p := range r.s.plants {
		if strings.Contains(strings.ToLower(p.ScientificName), text) || strings.Contains(strings.ToLower(p.CommonName), text) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScientificName < out[j].ScientificName })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPlants) GetByID(ctx context.Context, id int64) (*models.Plant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plants[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

type memLibrary struct{ s *memStore }

func (r memLibrary) Create(ctx context.Context, e *models.LibraryEntry) (*models.LibraryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[e.UserID]; !ok {
		return nil, common.ErrorReferenceMissing
	}
	if _, ok := r.s.plants[e.PlantID]; !ok {
		return nil, common.ErrorReferenceMissing
	}
	for _, x := range r.s.entries {
		if x.UserID == e.UserID && x.Nickname == e.Nickname {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.nextEntry++
	e.ID = r.s.nextEntry
	r.s.entries[e.ID] = *e
	return e, nil
}

func (r memLibrary) ListByUser(ctx context.Context, userID int64) ([]models.LibraryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("library.ListByUser"); err != nil {
		return nil, err
	}
	out := []models.LibraryEntry{}
	for _, e := range r.s.entries {
		if e.UserID == userID {
			e.Plant = r.s.plants[e.PlantID]
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLibrary) Delete(ctx context.Context, userID, entryID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[entryID]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(r.s.entries, entryID)
	return true, nil
}

func (r memLibrary) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, e := range r.s.entries {
		if e.UserID == userID {
			delete(r.s.entries, id)
			n++
		}
	}
	return n, nil
}

func (r memLibrary) update(userID, entryID int64, fn func(*models.LibraryEntry) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[entryID]
	if !ok || e.UserID != userID {
		return common.ErrorNotFound
	}
	if err := fn(&e); err != nil {
		return err
	}
	r.s.entries[entryID] = e
	return nil
}

func (r memLibrary) UpdateNickname(ctx context.Context, userID, entryID int64, name string) error {
	return r.update(userID, entryID, func(e *models.LibraryEntry) error {
		for id, x := range r.s.entries {
			if id != entryID && x.UserID == userID && x.Nickname == name {
				return common.ErrorAlreadyExists
			}
		}
		e.Nickname = name
		return nil
	})
}

func (r memLibrary) UpdateLastWatered(ctx context.Context, userID, entryID int64, day time.Time) error {
	return r.update(userID, entryID, func(e *models.LibraryEntry) error { e.LastWatered = day; return nil })
}

func (r memLibrary) UpdatePicture(ctx context.Context, userID, entryID int64, url string) error {
	return r.update(userID, entryID, func(e *models.LibraryEntry) error { e.PictureURL = url; return nil })
}

func (r memLibrary) MarkAllWatered(ctx context.Context, userID int64, day time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("library.MarkAllWatered"); err != nil {
		return 0, err
	}
	var n int64
	for id, e := range r.s.entries {
		if e.UserID == userID {
			e.LastWatered = day
			r.s.entries[id] = e
			n++
		}
	}
	return n, nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(ctx context.Context, userID int64, hash string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("tokens.Create"); err != nil {
		return err
	}
	r.s.tokens[hash] = models.PasswordResetToken{UserID: userID, TokenHash: hash, ExpiresAt: expires}
	return nil
}

func (r memTokens) Consume(ctx context.Context, hash string, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[hash]
	if !ok || !t.Usable(now) {
		return 0, common.ErrInvalidToken
	}
	t.UsedAt = &now
	r.s.tokens[hash] = t
	return t.UserID, nil
}

func (r memTokens) Find(ctx context.Context, hash string) (*models.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r memTokens) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for h, t := range r.s.tokens {
		if !t.Usable(now) {
			delete(r.s.tokens, h)
			n++
		}
	}
	return n, nil
}

// plainHasher keeps tests fast; it is not a real password hash.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Compare(hash, pw string) bool   { return hash == "hashed:"+pw }
func (plainHasher) CompareDummy(string)            {}

type captureMail struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (m *captureMail) Send(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[email] = token
	return m.err
}

func (m *captureMail) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type fakePictures struct {
	err error
}

func (f fakePictures) PresignUpload(ctx context.Context, userID int64) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "users/1/key", "https://s3.local/users/1/key?sig=x", nil
}

type fixture struct {
	store *memStore
	mail  *captureMail
	clock time.Time
	disp  *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		mail:  &captureMail{},
		clock: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	f.store.plants[1] = models.Plant{ID: 1, CommonName: "Weeping fig", ScientificName: "Ficus benjamina", Genus: "Ficus", Family: "Moraceae", Light: 6, WaterFrequency: 5}
	f.store.plants[2] = models.Plant{ID: 2, CommonName: "Snake plant", ScientificName: "Dracaena trifasciata", Genus: "Dracaena", Family: "Asparagaceae", Light: 3, WaterFrequency: 1}
	f.store.plants[3] = models.Plant{ID: 3, CommonName: "", ScientificName: "Monstera deliciosa", Genus: "Monstera", Family: "Araceae", Light: 5, WaterFrequency: 6}

	reg, err := Build(Deps{
		Repos:      f.store.repos(),
		UnitOfWork: memUoW{f.store},
		Passwords:  plainHasher{},
		Mail:       f.mail,
		Pictures:   fakePictures{},
		Logger:     logging.Discard(),
		Now:        func() time.Time { return f.clock },
	})
	require.NoError(t, err)
	f.disp = NewDispatcher(reg, logging.Discard())
	return f
}

// session returns a context bound to a fresh connection session.
func (f *fixture) session() context.Context {
	return WithSession(context.Background(), &Session{})
}

func errAlreadyExists() error { return common.ErrorAlreadyExists }
