// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("iso4217", validateISO4217)
	_ = v.RegisterValidation("spend_category", validateSpendCategory)
	_ = v.RegisterValidation("cycle_duration", validateCycleDuration)
	_ = v.RegisterValidation("cycle_status", validateCycleStatus)
	_ = v.RegisterValidation("yes_no", validateYesNo)
}

func validateISO4217(fl validator.FieldLevel) bool {
	return currency.IsISO4217(strings.ToUpper(fl.Field().String()))
}

func validateSpendCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseCategory(fl.Field().String())
	return ok
}

func validateCycleDuration(fl validator.FieldLevel) bool {
	switch models.CycleDuration(fl.Field().String()) {
	case models.CycleWeekly, models.CycleBiweekly, models.CycleMonthly:
		return true
	}
	return false
}

func validateCycleStatus(fl validator.FieldLevel) bool {
	switch models.CycleStatus(fl.Field().String()) {
	case models.CycleActive, models.CycleCompleted:
		return true
	}
	return false
}

func validateYesNo(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case models.PerformedYes, models.PerformedNo:
		return true
	}
	return false
}
