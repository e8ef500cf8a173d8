package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/gin-gonic/gin"
)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleReq struct {
	IDToken string `json:"idToken"`
}

func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.auth.Register(c.Request.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": res.User, "token": res.Token})
}

func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": res.User, "token": res.Token})
}

func (h *Handler) GoogleAuth(c *gin.Context) {
	var in googleReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.auth.GoogleAuth(c.Request.Context(), in.IDToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": res.User.Profile(), "token": res.Token})
}
