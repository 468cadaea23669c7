package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/pkg/models"
)

var (
	// ErrUnknownAction is returned for a request whose action is not supported.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidEmail is returned for a request without a usable customer email.
	ErrInvalidEmail = errors.New("a valid customer email is required")
)

// dateDetails are normalized to canonical dates that must lie in the future.
var dateDetails = map[string]bool{
	"end_date":       true,
	"trial_end_date": true,
	"new_end_date":   true,
}

// NormalizeRequest validates req and returns a copy whose detail keys are
// lower-cased with underscores and whose date details are canonical.
func NormalizeRequest(req models.ActionRequest, dates *dateparse.Parser) (models.ActionRequest, error) {
	if dates == nil {
		dates = dateparse.New()
	}

	out := models.ActionRequest{
		Action:  req.Action,
		Email:   strings.TrimSpace(req.Email),
		Source:  req.Source,
		Details: make(map[string]string, len(req.Details)),
	}
	if out.Source == "" {
		out.Source = models.SourceFreeText
	}

	if out.Action == "" || out.Action == models.ActionUnknown {
		return models.ActionRequest{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if _, domain, ok := strings.Cut(out.Email, "@"); !ok || !strings.Contains(domain, ".") {
		return models.ActionRequest{}, fmt.Errorf("%w: %q", ErrInvalidEmail, req.Email)
	}

	for k, v := range req.Details {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
		value := strings.TrimSpace(v)
		if key == "" || value == "" {
			continue
		}

		if dateDetails[key] {
			d, err := dates.Parse(value)
			if err != nil {
				return models.ActionRequest{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			if err := dates.ValidateFuture(d.String(), false); err != nil {
				return models.ActionRequest{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			value = d.String()
		}
		out.Details[key] = value
	}

	return out, nil
}
