package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/cache"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"

	"github.com/shopspring/decimal"
)

var errDBDown = errors.New("db down")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// expectCode fails the test unless err is an *apperr.Error with the given code.
func expectCode(t testing.TB, err error, code apperr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	if !apperr.HasCode(err, code) {
		t.Fatalf("expected error code %s, got %v", code, err)
	}
}

// fakeStore is an in-memory stand-in for the SQL repositories. It honors the
// same conditional-write contracts (ErrConflict, ErrDuplicate, (nil, nil)).
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time

	users  map[int64]*models.User
	wishes map[int64]*models.Wish
	offers map[int64]*models.Offer
	lists  map[int64]*models.Wishlist
	items  map[int64][]int64

	failWith error // returned by every call when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:  map[int64]*models.User{},
		wishes: map[int64]*models.Wish{},
		offers: map[int64]*models.Offer{},
		lists:  map[int64]*models.Wishlist{},
		items:  map[int64][]int64{},
	}
}

func (s *fakeStore) repos() *repository.Repository {
	return &repository.Repository{
		Users:     &fakeUsers{s},
		Wishes:    &fakeWishes{s},
		Offers:    &fakeOffers{s},
		Wishlists: &fakeWishlists{s},
	}
}

// tick returns a strictly increasing timestamp and the next id. Caller holds mu.
func (s *fakeStore) tick() (int64, time.Time) {
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	return s.nextID, s.clock
}

func (s *fakeStore) addUser(username string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, now := s.tick()
	u := &models.User{
		ID: id, Username: username, Email: username + "@example.com",
		About: models.DefaultAbout, Avatar: models.DefaultAvatar,
		CreatedAt: now, UpdatedAt: now,
	}
	s.users[id] = u
	return u
}

func (s *fakeStore) addWish(ownerID int64, price, raised string) *models.Wish {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, now := s.tick()
	w := &models.Wish{
		ID: id, Name: "wish", Link: "https://l", Image: "https://i", Description: "d",
		Price: dec(price), Raised: dec(raised), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now,
	}
	s.wishes[id] = w
	return w
}

func (s *fakeStore) addWishlist(ownerID int64, itemIDs ...int64) *models.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, now := s.tick()
	wl := &models.Wishlist{ID: id, Name: "list", Image: "https://i", OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	s.lists[id] = wl
	s.items[id] = itemIDs
	return wl
}

func (s *fakeStore) wish(id int64) *models.Wish {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wishes[id]; ok {
		cp := *w
		return &cp
	}
	return nil
}

// ---- users ----

type fakeUsers struct{ s *fakeStore }

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (int64, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	id, now := s.tick()
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	cp := *u
	s.users[id] = &cp
	return id, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByUsernameOrEmail(ctx context.Context, query string) ([]models.User, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.Username == query || u.Email == query {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, id int64, p models.UserPatch) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	u := s.users[id]
	for _, other := range s.users {
		if other.ID == id {
			continue
		}
		if (p.Username != nil && other.Username == *p.Username) || (p.Email != nil && other.Email == *p.Email) {
			return repository.ErrDuplicate
		}
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.About != nil {
		u.About = *p.About
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	return nil
}

// ---- wishes ----

type fakeWishes struct{ s *fakeStore }

func (f *fakeWishes) Create(ctx context.Context, w *models.Wish, wishlistIDs []int64) (int64, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	id, now := s.tick()
	w.ID, w.CreatedAt, w.UpdatedAt = id, now, now
	cp := *w
	s.wishes[id] = &cp
	for _, listID := range wishlistIDs {
		s.items[listID] = append(s.items[listID], id)
	}
	return id, nil
}

func (f *fakeWishes) GetByID(ctx context.Context, id int64) (*models.Wish, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if w, ok := s.wishes[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeWishes) GetByIDs(ctx context.Context, ids []int64) ([]models.Wish, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Wish{}
	for _, id := range ids {
		if w, ok := s.wishes[id]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWishes) sorted(less func(a, b models.Wish) bool, limit int, keep func(models.Wish) bool) ([]models.Wish, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.Wish{}
	for _, w := range s.wishes {
		if keep == nil || keep(*w) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newestFirst(a, b models.Wish) bool { return a.CreatedAt.After(b.CreatedAt) }

func (f *fakeWishes) ListRecent(ctx context.Context, limit int) ([]models.Wish, error) {
	return f.sorted(newestFirst, limit, nil)
}

func (f *fakeWishes) ListPopular(ctx context.Context, limit int) ([]models.Wish, error) {
	return f.sorted(func(a, b models.Wish) bool {
		if a.Copied != b.Copied {
			return a.Copied > b.Copied
		}
		return newestFirst(a, b)
	}, limit, nil)
}

func (f *fakeWishes) ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error) {
	return f.sorted(newestFirst, 0, func(w models.Wish) bool { return w.OwnerID == ownerID })
}

func (f *fakeWishes) Update(ctx context.Context, id int64, p models.WishPatch, requireUnfunded bool) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishes[id]
	if !ok || (requireUnfunded && !w.Raised.IsZero()) {
		return repository.ErrConflict
	}
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Link != nil {
		w.Link = *p.Link
	}
	if p.Image != nil {
		w.Image = *p.Image
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.Price != nil {
		w.Price = *p.Price
	}
	return nil
}

func (f *fakeWishes) Delete(ctx context.Context, id int64) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishes[id]
	if !ok || !w.Raised.IsZero() {
		return repository.ErrConflict
	}
	delete(s.wishes, id)
	for listID, ids := range s.items {
		kept := ids[:0]
		for _, wid := range ids {
			if wid != id {
				kept = append(kept, wid)
			}
		}
		s.items[listID] = kept
	}
	return nil
}

func (f *fakeWishes) Duplicate(ctx context.Context, sourceID int64, dup *models.Wish) (int64, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.wishes[sourceID]
	if !ok {
		return 0, repository.ErrConflict
	}
	src.Copied++
	id, now := s.tick()
	dup.ID, dup.CreatedAt, dup.UpdatedAt = id, now, now
	cp := *dup
	s.wishes[id] = &cp
	return id, nil
}

// ---- offers ----

type fakeOffers struct{ s *fakeStore }

func (f *fakeOffers) Contribute(ctx context.Context, o *models.Offer) (int64, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	w, ok := s.wishes[o.WishID]
	if !ok || w.OwnerID == o.UserID || w.Raised.Add(o.Amount).GreaterThan(w.Price) {
		return 0, repository.ErrConflict
	}
	w.Raised = w.Raised.Add(o.Amount)
	id, now := s.tick()
	o.ID, o.CreatedAt, o.UpdatedAt = id, now, now
	cp := *o
	s.offers[id] = &cp
	return id, nil
}

func (f *fakeOffers) withUser(o *models.Offer) models.OfferWithUser {
	ow := models.OfferWithUser{Offer: *o}
	if u, ok := f.s.users[o.UserID]; ok {
		ow.Username, ow.Avatar = u.Username, u.Avatar
	}
	return ow
}

func (f *fakeOffers) GetByID(ctx context.Context, id int64) (*models.OfferWithUser, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, nil
	}
	ow := f.withUser(o)
	return &ow, nil
}

func (f *fakeOffers) List(ctx context.Context) ([]models.OfferWithUser, error) {
	return f.list(func(*models.Offer) bool { return true })
}

func (f *fakeOffers) ListByWish(ctx context.Context, wishID int64) ([]models.OfferWithUser, error) {
	return f.list(func(o *models.Offer) bool { return o.WishID == wishID })
}

func (f *fakeOffers) list(keep func(*models.Offer) bool) ([]models.OfferWithUser, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.OfferWithUser{}
	for _, o := range s.offers {
		if keep(o) {
			out = append(out, f.withUser(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- wishlists ----

type fakeWishlists struct{ s *fakeStore }

func (f *fakeWishlists) Create(ctx context.Context, wl *models.Wishlist, itemIDs []int64) (int64, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	id, now := s.tick()
	wl.ID, wl.CreatedAt, wl.UpdatedAt = id, now, now
	cp := *wl
	s.lists[id] = &cp
	s.items[id] = append([]int64(nil), itemIDs...)
	return id, nil
}

func (f *fakeWishlists) GetByID(ctx context.Context, id int64) (*models.Wishlist, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if wl, ok := s.lists[id]; ok {
		cp := *wl
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeWishlists) ListAll(ctx context.Context) ([]models.Wishlist, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Wishlist{}
	for _, wl := range s.lists {
		out = append(out, *wl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeWishlists) Items(ctx context.Context, wishlistID int64) ([]models.Wish, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Wish{}
	for _, id := range s.items[wishlistID] {
		if w, ok := s.wishes[id]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWishlists) Update(ctx context.Context, id int64, p models.WishlistPatch) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.lists[id]
	if !ok {
		return repository.ErrConflict
	}
	if p.Name != nil {
		wl.Name = *p.Name
	}
	if p.Description != nil {
		wl.Description = *p.Description
	}
	if p.Image != nil {
		wl.Image = *p.Image
	}
	if p.ItemIDs != nil {
		s.items[id] = append([]int64(nil), p.ItemIDs...)
	}
	return nil
}

func (f *fakeWishlists) Delete(ctx context.Context, id int64) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; !ok {
		return repository.ErrConflict
	}
	delete(s.lists, id)
	delete(s.items, id)
	return nil
}

// ---- feed cache ----

// memFeedCache records cache traffic for assertions.
type memFeedCache struct {
	mu          sync.Mutex
	data        map[cache.Feed][]models.Wish
	gets, sets  int
	invalidates int
}

func newMemFeedCache() *memFeedCache {
	return &memFeedCache{data: map[cache.Feed][]models.Wish{}}
}

func (c *memFeedCache) Get(ctx context.Context, feed cache.Feed) ([]models.Wish, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	w, ok := c.data[feed]
	if !ok {
		return nil, cache.ErrMiss
	}
	return w, nil
}

func (c *memFeedCache) Set(ctx context.Context, feed cache.Feed, wishes []models.Wish) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[feed] = wishes
	return nil
}

func (c *memFeedCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	c.data = map[cache.Feed][]models.Wish{}
	return nil
}

func (c *memFeedCache) has(feed cache.Feed) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[feed]
	return ok
}
