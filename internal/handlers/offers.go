package handlers

import (
	"net/http"

	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createOfferRequest struct {
	ItemID int64            `json:"itemId" binding:"required,gt=0"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Hidden bool             `json:"hidden"`
}

// createOffer godoc
// @Summary      Contribute money toward a wish
// @Tags         offers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body createOfferRequest true "offer"
// @Success      201 {object} models.Offer
// @Failure      400 {object} errorResponse
// @Failure      404 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /offers [post]
func (h *Handler) createOffer(c *gin.Context) {
	var input createOfferRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	offer, err := h.services.Contribute(c.Request.Context(), mustUserID(c), service.ContributeInput{
		WishID: input.ItemID,
		Amount: *input.Amount,
		Hidden: input.Hidden,
	})
	if err != nil {
		h.respondError(c, "offer_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// getOffers godoc
// @Summary      All offers, hidden amounts redacted
// @Tags         offers
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} models.OfferView
// @Router       /offers [get]
func (h *Handler) getOffers(c *gin.Context) {
	offers, err := h.services.Offers.List(c.Request.Context(), mustUserID(c))
	if err != nil {
		h.respondError(c, "offer_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(offers))
}

// getOffer godoc
// @Summary      One offer, hidden amount redacted
// @Tags         offers
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "offer id"
// @Success      200 {object} models.OfferView
// @Failure      404 {object} errorResponse
// @Router       /offers/{id} [get]
func (h *Handler) getOffer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	offer, err := h.services.Offers.Get(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		h.respondError(c, "offer_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, offer)
}
