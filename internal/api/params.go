package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateParams checks a request struct before anything is sent.
func validateParams(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.InvalidArgument("invalid parameters: %v", err)
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperr.InvalidArgument("missing required parameter: %q", fe.Field())
	}
	return apperr.InvalidArgument("invalid parameter %q: failed %q check", fe.Field(), fe.Tag())
}

type param struct {
	name  string
	value string
}

// requireAll checks positional id arguments.
func requireAll(params ...param) error {
	for _, p := range params {
		if err := validate.Var(p.value, "required"); err != nil {
			return apperr.InvalidArgument("missing required parameter: %q", p.name)
		}
	}
	return nil
}

// compact drops unset optional values and dereferences the set ones, so the
// transport only sees plain values.
func compact(m map[string]any) map[string]any {
	set := lo.OmitBy(m, func(_ string, v any) bool {
		return lo.IsNil(v)
	})
	return lo.MapValues(set, func(v any, _ string) any {
		switch p := v.(type) {
		case *string:
			return *p
		case *bool:
			return *p
		case *int:
			return *p
		case *int64:
			return *p
		default:
			return v
		}
	})
}

// listParams builds the common queries/search parameters of list endpoints.
func listParams(queries []string, search string) map[string]any {
	params := map[string]any{"queries": queries}
	if search != "" {
		params["search"] = search
	}
	return compact(params)
}
