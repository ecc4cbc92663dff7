package handlers

import (
	"net/http"

	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createWishRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=250"`
	Link        string           `json:"link" binding:"required,url"`
	Image       string           `json:"image" binding:"required,url"`
	Description string           `json:"description" binding:"required,min=1,max=1024"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Raised      *decimal.Decimal `json:"raised"`
	WishlistIDs []int64          `json:"wishlistIds"`
}

type updateWishRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=250"`
	Link        *string          `json:"link" binding:"omitempty,url"`
	Image       *string          `json:"image" binding:"omitempty,url"`
	Description *string          `json:"description" binding:"omitempty,min=1,max=1024"`
	Price       *decimal.Decimal `json:"price"`
}

// createWish godoc
// @Summary      Create a wish
// @Tags         wishes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body createWishRequest true "wish"
// @Success      201 {object} models.Wish
// @Failure      400 {object} errorResponse
// @Failure      403 {object} errorResponse
// @Router       /wishes [post]
func (h *Handler) createWish(c *gin.Context) {
	var input createWishRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	wish, err := h.services.Wishes.Create(c.Request.Context(), mustUserID(c), service.CreateWishInput{
		Name:        input.Name,
		Link:        input.Link,
		Image:       input.Image,
		Description: input.Description,
		Price:       *input.Price,
		Raised:      input.Raised,
		WishlistIDs: input.WishlistIDs,
	})
	if err != nil {
		h.respondError(c, "wish_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, wish)
}

// getRecentWishes godoc
// @Summary      Latest wishes
// @Tags         wishes
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} models.Wish
// @Router       /wishes/last [get]
func (h *Handler) getRecentWishes(c *gin.Context) {
	wishes, err := h.services.ListRecent(c.Request.Context())
	if err != nil {
		h.respondError(c, "wish_feed_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(wishes))
}

// getPopularWishes godoc
// @Summary      Most copied wishes
// @Tags         wishes
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} models.Wish
// @Router       /wishes/top [get]
func (h *Handler) getPopularWishes(c *gin.Context) {
	wishes, err := h.services.ListPopular(c.Request.Context())
	if err != nil {
		h.respondError(c, "wish_feed_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(wishes))
}

// getWish godoc
// @Summary      Wish with owner and offers
// @Tags         wishes
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "wish id"
// @Success      200 {object} models.WishView
// @Failure      404 {object} errorResponse
// @Router       /wishes/{id} [get]
func (h *Handler) getWish(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.services.Wishes.Read(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		h.respondError(c, "wish_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateWish godoc
// @Summary      Edit own wish
// @Tags         wishes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int               true "wish id"
// @Param        input body updateWishRequest true "fields to change"
// @Success      200 {object} models.Wish
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /wishes/{id} [patch]
func (h *Handler) updateWish(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var input updateWishRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	wish, err := h.services.Wishes.Update(c.Request.Context(), mustUserID(c), id, service.UpdateWishInput{
		Name:        input.Name,
		Link:        input.Link,
		Image:       input.Image,
		Description: input.Description,
		Price:       input.Price,
	})
	if err != nil {
		h.respondError(c, "wish_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// deleteWish godoc
// @Summary      Delete own unfunded wish
// @Tags         wishes
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "wish id"
// @Success      200 {object} models.Wish
// @Failure      403 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /wishes/{id} [delete]
func (h *Handler) deleteWish(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	wish, err := h.services.Wishes.Delete(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		h.respondError(c, "wish_delete_failed", err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// copyWish godoc
// @Summary      Copy a wish into own list
// @Tags         wishes
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "wish id"
// @Success      201 {object} models.Wish
// @Failure      404 {object} errorResponse
// @Router       /wishes/{id}/copy [post]
func (h *Handler) copyWish(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	wish, err := h.services.Duplicate(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		h.respondError(c, "wish_copy_failed", err)
		return
	}
	c.JSON(http.StatusCreated, wish)
}
