package services

import (
	"errors"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/auth"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct{}

func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login verifies the password and issues a token carrying the user id
// and superuser flag.
func (s *AuthService) Login(email, password string) (string, error) {
	var user models.User

	err := orm.DB().
		Model(&models.User{}).
		Where("email = ?", email).
		First(&user)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID, user.Superuser)
}
