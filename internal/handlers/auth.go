package handlers

import (
	"net/http"

	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
	About    string `json:"about" binding:"omitempty,max=200"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

type signInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// signUp godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body signUpRequest true "new account"
// @Success      201 {object} tokenResponse
// @Failure      400 {object} errorResponse
// @Failure      409 {object} errorResponse
// @Failure      429 {object} errorResponse
// @Router       /signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		About:    input.About,
		Avatar:   input.Avatar,
	})
	if err != nil {
		h.respondError(c, "auth_sign_up_failed", err)
		return
	}

	token, err := h.services.IssueToken(user.ID)
	if err != nil {
		h.respondError(c, "auth_issue_token_failed", err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{AccessToken: token})
}

// signIn godoc
// @Summary      Exchange credentials for an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body signInRequest true "credentials"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} errorResponse
// @Failure      401 {object} errorResponse
// @Failure      429 {object} errorResponse
// @Router       /signin [post]
func (h *Handler) signIn(c *gin.Context) {
	var input signInRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, "auth_sign_in_failed", err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token})
}
