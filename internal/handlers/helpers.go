package handlers

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/talentnet/backend/internal/errors"
	"github.com/talentnet/backend/internal/util"
)

// bindJSON binds the request body into req, answering 400/422 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		util.RespondWithAPIError(c, bindingError(err))
		return false
	}
	return true
}

// bindForm binds a JSON or multipart body depending on its content type
func bindForm(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		util.RespondWithAPIError(c, bindingError(err))
		return false
	}
	return true
}

// bindingError turns a gin binding failure into an API error naming the first bad field
func bindingError(err error) *errors.APIError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := snakeCase(fe.Field())
		return errors.ValidationError(field, validationMessage(field, fe))
	}
	return errors.BadRequest("request body must be valid JSON")
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
