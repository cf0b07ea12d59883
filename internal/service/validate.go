package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nikdata/oura-hrv/internal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// envNames maps credential fields to the variables that supply them.
var envNames = map[string]string{
	"client_id":     "OURA_CLIENT_ID",
	"client_secret": "OURA_CLIENT_SECRET",
	"refresh_token": "OURA_REFRESH_TOKEN",
}

// ValidateCredentials fails with a MissingCredentialsError naming every
// absent variable.
func ValidateCredentials(creds internal.Credentials) error {
	err := validate.Struct(creds)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if env, ok := envNames[name]; ok {
			name = env
		}
		missing = append(missing, name)
	}
	return &internal.MissingCredentialsError{Fields: missing}
}

// SyncRequest is the optional body of POST /sync.
type SyncRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func ValidateSyncRequest(req *SyncRequest) error {
	return validate.Struct(req)
}

// DateRangeFor resolves the fetch window. Explicit dates win; otherwise the
// window is the last daysBack days through tomorrow, because the API treats
// end_date as exclusive and last night's session is filed under today.
func DateRangeFor(start, end string, daysBack int, now time.Time) (internal.DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	r := internal.DateRange{
		Start: today.AddDate(0, 0, -daysBack),
		End:   today.AddDate(0, 0, 1),
	}
	if start != "" {
		t, err := time.Parse(internal.DateLayout, start)
		if err != nil {
			return r, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(internal.DateLayout, end)
		if err != nil {
			return r, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r.End = t
	}
	if r.Start.After(r.End) {
		return r, fmt.Errorf("start date %s is after end date %s", r.Start.Format(internal.DateLayout), r.End.Format(internal.DateLayout))
	}
	return r, nil
}
