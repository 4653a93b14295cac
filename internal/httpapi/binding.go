package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

var tagNameOnce sync.Once

// useJSONFieldNames makes validation errors report the wire field name
// (json or form tag) instead of the Go field name.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bindError converts a gin binding failure into a ValidationInputError
// naming the first offending field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &knowledge.ValidationInputError{Field: "body", Message: fmt.Sprintf("is malformed: %v", err)}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = "must be a positive integer"
	case "oneof":
		msg = fmt.Sprintf("%q is not one of: %s", fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return &knowledge.ValidationInputError{Field: fe.Field(), Message: msg}
}
