package validator

import (
	"errors"
	"fmt"
	"pawcare/pkg/logger"
	"pawcare/pkg/model"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors into a field -> message map for error responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type SlotQuery struct {
	ServiceName string `json:"service_name" validate:"required,service_name"`
	Date        string `json:"date" validate:"required,booking_date"`
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	location *time.Location
}

func NewBookingValidator(log *logger.Logger, location *time.Location) *BookingValidator {
	if location == nil {
		location = time.UTC
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	bv := &BookingValidator{
		validate: v,
		logger:   log,
		location: location,
	}

	custom := map[string]validator.Func{
		"service_name":   validateServiceName,
		"time_slot":      validateTimeSlot,
		"booking_status": validateBookingStatus,
		"booking_date":   bv.validateBookingDate,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register booking validator",
				"tag", tag,
				"error", err,
			)
		}
	}

	log.Debug("Booking validator initialized successfully")

	return bv
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateServiceName(fl validator.FieldLevel) bool {
	return model.IsValidService(fl.Field().String())
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return model.IsValidTimeSlot(fl.Field().String())
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	return model.BookingStatus(fl.Field().String()).IsValid()
}

func (v *BookingValidator) validateBookingDate(fl validator.FieldLevel) bool {
	_, err := model.ParseBookingDate(fl.Field().String(), v.location)
	return err == nil
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateSlotQuery(query *SlotQuery) error {
	return v.validateStruct(query)
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	return v.validateStruct(update)
}

func (v *BookingValidator) ValidateStatusFilter(status string) error {
	if status == "" {
		return nil
	}
	if err := v.validate.Var(status, "booking_status"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "status",
				Message: fmt.Sprintf("status must be one of: %s", statusList()),
			},
		}
	}
	return nil
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func statusList() string {
	statuses := model.BookingStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "service_name":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.Services(), " "))
		case "time_slot":
			message = fmt.Sprintf("%s must be one of the fixed daily slots, e.g. %q", err.Field(), model.TimeSlots()[0].Label)
		case "booking_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD or RFC3339 format", err.Field())
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), statusList())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
