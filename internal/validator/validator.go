package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"

	"github.com/go-playground/validator/v10"
)

// Validator 结构校验加业务规则校验，错误统一为 util.ValidationErrors
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerRules()
	return v
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		return model.NormalizeResourceType(fl.Field().String()).Valid()
	})
	v.validate.RegisterValidation("assignment_type", func(fl validator.FieldLevel) bool {
		switch model.AssignmentType(fl.Field().String()) {
		case model.AssignmentText, model.AssignmentFile:
			return true
		}
		return false
	})
	v.validate.RegisterValidation("progress_status", func(fl validator.FieldLevel) bool {
		return model.ProgressStatus(fl.Field().String()).Valid()
	})
	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		switch model.UserRole(fl.Field().String()) {
		case model.Student, model.Instructor, model.Admin:
			return true
		}
		return false
	})
}

// Struct 只做 tag 校验
func (v *Validator) Struct(s interface{}) util.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return util.ValidationErrors{{Field: "body", Message: err.Error(), Rule: "invalid"}}
	}
	out := make(util.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, util.ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// 去掉根结构体名，保留嵌套路径，如 questions[0].options
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", fe.Param())
	case "resource_type":
		return "must be one of pdf, video, link, file, text"
	case "assignment_type":
		return "must be text or file"
	case "progress_status":
		return "must be one of not_started, in_progress, completed"
	case "user_role":
		return "must be student, instructor or admin"
	default:
		return fmt.Sprintf("failed rule '%s'", fe.Tag())
	}
}
