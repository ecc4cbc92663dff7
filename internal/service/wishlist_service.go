package service

import (
	"context"
	"errors"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"
)

type WishlistService struct {
	wishlists repository.WishlistRepo
	wishes    repository.WishRepo
	users     repository.UserRepo
}

func NewWishlistService(wishlists repository.WishlistRepo, wishes repository.WishRepo, users repository.UserRepo) *WishlistService {
	return &WishlistService{wishlists: wishlists, wishes: wishes, users: users}
}

// Create stores a wishlist whose every item id must resolve to an existing wish.
func (s *WishlistService) Create(ctx context.Context, ownerID int64, in CreateWishlistInput) (*models.WishlistView, error) {
	owner, err := resolveCaller(ctx, s.users, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, in.ItemIDs)
	if err != nil {
		return nil, err
	}

	wl := &models.Wishlist{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		OwnerID:     ownerID,
	}
	if _, err := s.wishlists.Create(ctx, wl, itemIDs(items)); err != nil {
		return nil, apperr.Internal(err, "create wishlist")
	}
	return &models.WishlistView{
		Wishlist: *wl,
		Owner:    models.Owner{ID: owner.ID, Username: owner.Username, Avatar: owner.Avatar},
		Items:    items,
	}, nil
}

// Read returns the wishlist with its member wishes.
func (s *WishlistService) Read(ctx context.Context, id int64) (*models.WishlistView, error) {
	wl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.wishlists.Items(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load wishlist items")
	}

	owner := models.Owner{ID: wl.OwnerID}
	u, err := s.users.GetByID(ctx, wl.OwnerID)
	if err != nil {
		return nil, apperr.Internal(err, "load wishlist owner")
	}
	if u != nil {
		owner.Username, owner.Avatar = u.Username, u.Avatar
	}
	return &models.WishlistView{Wishlist: *wl, Owner: owner, Items: items}, nil
}

// Update edits the owner's wishlist; a non-nil ItemIDs replaces the membership.
func (s *WishlistService) Update(ctx context.Context, requesterID, id int64, in UpdateWishlistInput) (*models.WishlistView, error) {
	wl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if wl.OwnerID != requesterID {
		return nil, apperr.ErrUpdateOtherWishlist
	}

	patch := models.WishlistPatch{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
	}
	if in.ItemIDs != nil {
		items, err := s.resolveItems(ctx, in.ItemIDs)
		if err != nil {
			return nil, err
		}
		patch.ItemIDs = itemIDs(items)
	}

	if err := s.wishlists.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.ErrWishlistNotFound
		}
		return nil, apperr.Internal(err, "update wishlist")
	}
	return s.Read(ctx, id)
}

// Delete removes the owner's wishlist and returns it; member wishes stay.
func (s *WishlistService) Delete(ctx context.Context, requesterID, id int64) (*models.Wishlist, error) {
	wl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if wl.OwnerID != requesterID {
		return nil, apperr.ErrDeleteOtherWishlist
	}
	if err := s.wishlists.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.ErrWishlistNotFound
		}
		return nil, apperr.Internal(err, "delete wishlist")
	}
	return wl, nil
}

func (s *WishlistService) ListAll(ctx context.Context) ([]models.Wishlist, error) {
	lists, err := s.wishlists.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list wishlists")
	}
	return lists, nil
}

func (s *WishlistService) load(ctx context.Context, id int64) (*models.Wishlist, error) {
	wl, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load wishlist")
	}
	if wl == nil {
		return nil, apperr.ErrWishlistNotFound
	}
	return wl, nil
}

// resolveItems loads the wishes behind ids. Empty input and unknown ids are rejected.
func (s *WishlistService) resolveItems(ctx context.Context, ids []int64) ([]models.Wish, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperr.ErrEmptyItemsID
	}
	wishes, err := s.wishes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "load wishes")
	}
	if len(wishes) == len(ids) {
		return wishes, nil
	}

	found := make(map[int64]struct{}, len(wishes))
	for _, w := range wishes {
		found[w.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return nil, apperr.WishesNotFound(missing)
}

func itemIDs(items []models.Wish) []int64 {
	ids := make([]int64, 0, len(items))
	for _, w := range items {
		ids = append(ids, w.ID)
	}
	return ids
}
