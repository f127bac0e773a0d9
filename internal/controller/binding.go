package controller

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"baryabazaar-api/internal/models"
)

// txtype restricts a string field to the known transaction types.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case models.TypeBuy, models.TypeSell, models.TypeInternalTransfer:
				return true
			}
			return false
		})
	}
}
