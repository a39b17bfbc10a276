package resource

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/fallback"
)

var (
	// ErrInvalidID is returned for ids that are not positive integers.
	ErrInvalidID = errors.New("invalid id")

	// ErrMalformedBody is returned when the request body is not a JSON object of the resource.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrEmptySearch is returned by search without a term.
	ErrEmptySearch = errors.New("search term q is required")

	// ErrInvalidPaging is returned for non-numeric page or pageSize values.
	ErrInvalidPaging = errors.New("page and pageSize must be numbers")
)

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value"`
}

// ValidationError carries every failed rule of a record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}

	return "validation failed: " + strings.Join(names, ", ")
}

var validate = newValidator() //nolint:gochecknoglobals

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, the client never sees Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		if name == "" {
			return fld.Name
		}

		return name
	})

	return v
}

// Validate checks v against its validate tags and returns a *ValidationError on failure.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err //nolint:wrapcheck
	}

	ve := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Value: fe.Value()})
	}

	return ve
}

// Fail writes the JSON error envelope for err.
func Fail(c *fiber.Ctx, name, operation string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error(), "fields": ve.Fields})
	}

	switch {
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrMalformedBody),
		errors.Is(err, ErrEmptySearch), errors.Is(err, ErrInvalidPaging):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, fallback.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	if be, ok := backend.AsError(err); ok {
		if be.StatusCode >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("resource", name).Str("operation", operation).Msg("backend failed")
		}

		return c.Status(be.StatusCode).JSON(fiber.Map{"error": be.Message})
	}

	log.Error().Err(err).Str("resource", name).Str("operation", operation).Msg("request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
