package entity

import (
	"churchhelper/internal/lib/validate"
	"net/http"
)

type UserAuth struct {
	Name  string `json:"name" validate:"omitempty"`
	Token string `json:"token" validate:"required,min=1"`
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}
