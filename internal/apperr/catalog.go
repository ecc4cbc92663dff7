package apperr

// Predefined errors. Return them directly or through Wrap when a cause matters;
// they are compared by kind and code, never by pointer.
var (
	ErrLoginOrPasswordIncorrect = New(KindUnauthorized, CodeLoginOrPasswordIncorrect, "incorrect username or password")
	ErrUnauthorized             = New(KindUnauthorized, CodeUnauthorized, "unauthorized")
	ErrUserAlreadyExists        = New(KindConflict, CodeUserAlreadyExists, "a user with this email or username is already registered")
	ErrUserNotFound             = New(KindNotFound, CodeUserNotFound, "user not found")

	ErrWishNotFound         = New(KindNotFound, CodeWishNotFound, "wish not found")
	ErrWishRaisedAbovePrice = New(KindInvalidState, CodeWishRaisedIsRatherThanPrice, "raised amount cannot exceed the wish price")
	ErrUpdateWishPrice      = New(KindConflict, CodeConflictUpdateWishPrice, "the price cannot change once money has been raised")
	ErrDeleteFundedWish     = New(KindConflict, CodeConflictDeleteFundedWish, "a wish cannot be deleted once money has been raised")
	ErrUpdateOtherWish      = New(KindForbidden, CodeConflictUpdateOtherWish, "cannot edit another user's wish")
	ErrDeleteOtherWish      = New(KindForbidden, CodeConflictDeleteOtherWish, "cannot delete another user's wish")
	ErrOfferTooMuchMoney    = New(KindConflict, CodeConflictUpdateOfferTooMuchMoney, "the offer exceeds the amount left to raise")
	ErrOwnWishOffer         = New(KindConflict, CodeConflictCreateOwnWishOffer, "cannot contribute to your own wish")
	ErrOfferNotFound        = New(KindNotFound, CodeOfferNotFound, "offer not found")
	ErrWishlistNotFound     = New(KindNotFound, CodeWishlistNotFound, "wishlist not found")
	ErrEmptyItemsID         = New(KindInvalidState, CodeEmptyItemsID, "itemsId must contain at least one wish")
	ErrUpdateOtherWishlist  = New(KindForbidden, CodeConflictUpdateOtherWishlist, "cannot edit another user's wishlist")
	ErrDeleteOtherWishlist  = New(KindForbidden, CodeConflictDeleteOtherWishlist, "cannot delete another user's wishlist")
	ErrTooManyRequests      = New(KindRateLimited, CodeTooManyRequests, "too many requests")
)

// Validation builds an InvalidState error for a malformed request field.
func Validation(field, reason string) *Error {
	return Newf(KindInvalidState, CodeValidationFailed, "invalid %s: %s", field, reason)
}

// InvalidAmount builds an InvalidState error for a non-positive money value.
func InvalidAmount(field string) *Error {
	return Newf(KindInvalidState, CodeInvalidAmount, "%s must be greater than zero", field)
}

// AmountTooLarge builds an InvalidState error for a money value above max.
func AmountTooLarge(field, max string) *Error {
	return Newf(KindInvalidState, CodeInvalidAmount, "%s must not exceed %s", field, max)
}

// WishesNotFound reports wish ids that did not resolve.
func WishesNotFound(ids []int64) *Error {
	return Newf(KindNotFound, CodeWishesNotFound, "wishes not found: %v", ids)
}
