package devserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validationItem - элемент detail в стиле FastAPI
type validationItem struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// В сообщениях поля называются так же, как в JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationDetails(err error) []validationItem {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []validationItem{{Loc: []string{"body"}, Msg: err.Error()}}
	}
	items := make([]validationItem, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "email":
			msg = "email is not a valid address"
		default:
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		items = append(items, validationItem{Loc: []string{"body", fe.Field()}, Msg: msg})
	}
	return items
}
