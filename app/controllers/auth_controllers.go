package controllers

import (
	"net/http"

	"github.com/vitrinehq/vitrine/app/services"
	"github.com/vitrinehq/vitrine/pkg/bind"
	"github.com/vitrinehq/vitrine/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{
		service: services.NewAuthService(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.service.Login(body.Email, body.Password)
	if err != nil {
		response.Unauthorized(w)
		return
	}

	response.Success(w, map[string]string{"token": token})
}
