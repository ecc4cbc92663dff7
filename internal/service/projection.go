package service

import "kupipodariday/internal/models"

// ProjectOffers builds the read view of offers for viewerID. Hidden offers
// keep their contributor visible but show RedactedAmount to everyone except
// the contributor.
func ProjectOffers(viewerID int64, offers []models.OfferWithUser) []models.OfferView {
	views := make([]models.OfferView, 0, len(offers))
	for _, o := range offers {
		views = append(views, projectOffer(viewerID, o))
	}
	return views
}

func projectOffer(viewerID int64, o models.OfferWithUser) models.OfferView {
	v := models.OfferView{
		ID:        o.ID,
		WishID:    o.WishID,
		UserID:    o.UserID,
		Name:      o.Username,
		Avatar:    o.Avatar,
		Hidden:    o.Hidden,
		CreatedAt: o.CreatedAt,
		Amount:    o.Amount,
	}
	if o.Hidden && o.UserID != viewerID {
		v.Amount = models.RedactedAmount
	}
	return v
}
