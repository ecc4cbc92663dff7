package handlers

import (
	"net/http"

	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
)

type createWishlistRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=250"`
	Description string  `json:"description" binding:"omitempty,max=1500"`
	Image       string  `json:"image" binding:"required,url"`
	ItemIDs     []int64 `json:"itemsId"`
}

type updateWishlistRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=250"`
	Description *string `json:"description" binding:"omitempty,max=1500"`
	Image       *string `json:"image" binding:"omitempty,url"`
	ItemIDs     []int64 `json:"itemsId"`
}

// createWishlist godoc
// @Summary      Create a wishlist
// @Tags         wishlists
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body createWishlistRequest true "wishlist"
// @Success      201 {object} models.WishlistView
// @Failure      400 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /wishlists [post]
func (h *Handler) createWishlist(c *gin.Context) {
	var input createWishlistRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	view, err := h.services.Wishlists.Create(c.Request.Context(), mustUserID(c), service.CreateWishlistInput{
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		ItemIDs:     input.ItemIDs,
	})
	if err != nil {
		h.respondError(c, "wishlist_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// getWishlists godoc
// @Summary      All wishlists
// @Tags         wishlists
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} models.Wishlist
// @Router       /wishlists [get]
func (h *Handler) getWishlists(c *gin.Context) {
	lists, err := h.services.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, "wishlist_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(lists))
}

// getWishlist godoc
// @Summary      Wishlist with its wishes
// @Tags         wishlists
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "wishlist id"
// @Success      200 {object} models.WishlistView
// @Failure      404 {object} errorResponse
// @Router       /wishlists/{id} [get]
func (h *Handler) getWishlist(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.services.Wishlists.Read(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "wishlist_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateWishlist godoc
// @Summary      Edit own wishlist
// @Tags         wishlists
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                   true "wishlist id"
// @Param        input body updateWishlistRequest true "fields to change"
// @Success      200 {object} models.WishlistView
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /wishlists/{id} [patch]
func (h *Handler) updateWishlist(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var input updateWishlistRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	view, err := h.services.Wishlists.Update(c.Request.Context(), mustUserID(c), id, service.UpdateWishlistInput{
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		ItemIDs:     input.ItemIDs,
	})
	if err != nil {
		h.respondError(c, "wishlist_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// deleteWishlist godoc
// @Summary      Delete own wishlist
// @Tags         wishlists
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "wishlist id"
// @Success      200 {object} models.Wishlist
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Router       /wishlists/{id} [delete]
func (h *Handler) deleteWishlist(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	list, err := h.services.Wishlists.Delete(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		h.respondError(c, "wishlist_delete_failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
