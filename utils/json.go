package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/AgentChief/accredis/models"
)

// Named vocabularies usable as validate tags.
var vocabularies = map[string][]string{
	"role":          models.ValidRoles,
	"state":         models.AustralianStates,
	"doc_category":  models.DocumentCategories,
	"jurisdiction":  models.Jurisdictions,
	"risk_category": models.RiskCategories,
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. Field names in messages use json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, values := range vocabularies {
			allowed := values
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				v := fl.Field().String()
				for _, a := range allowed {
					if a == v {
						return true
					}
				}
				return false
			})
		}
	})
	return validate
}

// ParseJSON parses JSON request body
func ParseJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeAndValidate reads a JSON body into v and runs struct validation on it.
// Failures come back as InvalidArgument errors.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := ParseJSON(r, v); err != nil {
		if errors.Is(err, io.EOF) {
			return InvalidArgument("request body is required")
		}
		return InvalidArgument("invalid request payload")
	}
	return ValidateStruct(v)
}

// ValidateStruct runs the shared validator and flattens the first failure into a message.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return InvalidArgument(fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			return InvalidArgument(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "min", "max", "gte", "lte":
			return InvalidArgument(fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		case "role", "state", "doc_category", "jurisdiction", "risk_category":
			return InvalidArgument(fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(vocabularies[fe.Tag()], ", ")))
		case "email":
			return InvalidArgument(fmt.Sprintf("%s must be a valid email address", fe.Field()))
		default:
			return InvalidArgument(fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return InvalidArgument("invalid request payload")
}
