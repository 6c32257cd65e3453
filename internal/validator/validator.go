package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	models "github.com/veligo/charterdesk/internal"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("charter_date", validateCharterDate)
	v.RegisterValidation("day_part", validateDayPart)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func validateCharterDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateDayPart(fl validator.FieldLevel) bool {
	switch models.DayPart(fl.Field().String()) {
	case models.DayPartFull, models.DayPartAM, models.DayPartPM, models.DayPartSunset:
		return true
	}
	return false
}
