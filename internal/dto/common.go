package dto

import "github.com/go-playground/validator/v10"

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

var validate = validator.New()

// Validate runs struct-tag validation on a request body.
func Validate(s interface{}) error {
	return validate.Struct(s)
}
