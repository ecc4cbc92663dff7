package handlers

import (
	"net/http"

	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
)

type updateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=30"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=1,max=72"`
	About    *string `json:"about" binding:"omitempty,max=200"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
}

type findUsersRequest struct {
	Query string `json:"query" binding:"required"`
}

// getMe godoc
// @Summary      Own profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} models.User
// @Failure      401 {object} errorResponse
// @Router       /users/me [get]
func (h *Handler) getMe(c *gin.Context) {
	user, err := h.services.Me(c.Request.Context(), mustUserID(c))
	if err != nil {
		h.respondError(c, "user_me_failed", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// updateMe godoc
// @Summary      Update own profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body updateUserRequest true "fields to change"
// @Success      200 {object} models.User
// @Failure      400 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Router       /users/me [patch]
func (h *Handler) updateMe(c *gin.Context) {
	var input updateUserRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.UpdateProfile(c.Request.Context(), mustUserID(c), service.UpdateUserInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		About:    input.About,
		Avatar:   input.Avatar,
	})
	if err != nil {
		h.respondError(c, "user_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// getMyWishes godoc
// @Summary      Own wishes
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} models.Wish
// @Router       /users/me/wishes [get]
func (h *Handler) getMyWishes(c *gin.Context) {
	wishes, err := h.services.ListByOwner(c.Request.Context(), mustUserID(c))
	if err != nil {
		h.respondError(c, "user_wishes_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(wishes))
}

// getUser godoc
// @Summary      Public profile by username
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        username path string true "username"
// @Success      200 {object} models.PublicUser
// @Failure      404 {object} errorResponse
// @Router       /users/{username} [get]
func (h *Handler) getUser(c *gin.Context) {
	user, err := h.services.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, "user_lookup_failed", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// getUserWishes godoc
// @Summary      Wishes of another user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        username path string true "username"
// @Success      200 {array} models.Wish
// @Failure      404 {object} errorResponse
// @Router       /users/{username}/wishes [get]
func (h *Handler) getUserWishes(c *gin.Context) {
	wishes, err := h.services.ListByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, "user_wishes_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(wishes))
}

// findUsers godoc
// @Summary      Find users by exact username or email
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body findUsersRequest true "query"
// @Success      200 {array} models.PublicUser
// @Router       /users/find [post]
func (h *Handler) findUsers(c *gin.Context) {
	var input findUsersRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	users, err := h.services.Search(c.Request.Context(), input.Query)
	if err != nil {
		h.respondError(c, "user_search_failed", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(users))
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
