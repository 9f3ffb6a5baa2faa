package handler // handler holds the Echo HTTP handlers of the hostel API

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/utils"
)

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct{ v *validator.Validate }

// NewValidator returns the validator installed on the Echo instance.  Field
// names in errors use the json tag so messages match the request body.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (r *requestValidator) Validate(i any) error { return r.v.Struct(i) }

// bindValid decodes the body into dst and runs struct validation.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// missingFields lists the json names of fields that failed validation.
func missingFields(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fe.Field())
	}
	return out
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// serverError logs err and answers 500 with a generic body under key.
func serverError(c echo.Context, log *zap.Logger, key, msg string, err error) error {
	log.Error(msg,
		zap.String("route", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{key: msg})
}

// actingAs resolves the username a request body targets and reports
// whether the caller may act for it.  A student who leaves it empty acts
// for themselves.
func actingAs(c echo.Context, username string) (string, bool) {
	username = strings.TrimSpace(username)
	if role, _ := c.Get(middleware.CtxRole).(string); username == "" && role == utils.RoleStudent {
		username, _ = c.Get(middleware.CtxUsername).(string)
	}
	return username, middleware.CanActAs(c, username)
}
