package projection

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MsgInvalidUsername возвращается для имени с недопустимыми символами.
const MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}
	return v
}

// checkConstraints прогоняет теги validate и добавляет замечания к полям,
// по которым ещё нет ошибок приведения типов.
func checkConstraints(payload any, errs *domain.ValidationError) {
	err := validate.Struct(payload)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(domain.NonFieldErrors, err.Error())
		return
	}

	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		if errs.Has(key) {
			continue
		}
		errs.Add(key, constraintMessage(fe))
	}
}

// fieldKey отрезает имя корневой структуры: "cartPayload.items[0].quantity" -> "items[0].quantity".
func fieldKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func constraintMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "username":
		return MsgInvalidUsername
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
