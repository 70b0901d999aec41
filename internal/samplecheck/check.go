// Package samplecheck validates the rendered curl samples against the
// OpenAPI description they were generated from.
package samplecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
	"github.com/sirupsen/logrus"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/model"
	"github.com/kolah/refdoc/internal/render"
)

const defaultBase = "http://localhost"

// Checker replays each operation's sample request through a validator.
type Checker struct {
	validator validator.Validator
	groups    map[string]config.GroupConfig
	log       logrus.FieldLogger
}

// Finding is a sample request that the validator rejected.
type Finding struct {
	Method   model.Method
	Path     string
	Problems []string
}

func (f Finding) Error() string {
	return fmt.Sprintf("%s %s: %s", f.Method, f.Path, strings.Join(f.Problems, "; "))
}

type Report struct {
	Checked  int
	Findings []Finding
}

// Failed reports whether any sample was rejected.
func (r *Report) Failed() bool {
	return len(r.Findings) > 0
}

// Err joins the findings into one error, or returns nil.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}
	errs := make([]error, 0, len(r.Findings))
	for _, f := range r.Findings {
		errs = append(errs, f)
	}
	return fmt.Errorf("%d of %d samples failed validation: %w", len(r.Findings), r.Checked, errors.Join(errs...))
}

func New(src libopenapi.Document, groups map[string]config.GroupConfig, log logrus.FieldLogger) (*Checker, error) {
	v, errs := validator.NewValidator(src)
	if len(errs) > 0 {
		return nil, fmt.Errorf("building validator: %w", errors.Join(errs...))
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Checker{validator: v, groups: groups, log: log}, nil
}

// Check validates the sample request of every operation in ref.
func (c *Checker) Check(ctx context.Context, ref *model.Reference) (*Report, error) {
	base := defaultBase
	if len(ref.Servers) > 0 {
		base = baseURL(ref.Servers[0].URL)
	}

	report := &Report{}
	for _, g := range ref.Groups {
		for _, op := range g.Operations {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			req, err := newRequest(ctx, base, render.SampleRequest(c.groups[g.Name], op))
			if err != nil {
				return nil, fmt.Errorf("%s %s: building sample request: %w", op.Method, op.Path, err)
			}
			report.Checked++

			valid, verrs := c.validator.ValidateHttpRequestSync(req)
			if valid {
				continue
			}

			finding := Finding{Method: op.Method, Path: op.Path, Problems: problems(verrs)}
			report.Findings = append(report.Findings, finding)
			c.log.WithFields(logrus.Fields{
				"method": op.Method,
				"path":   op.Path,
			}).Warnf("sample request does not validate: %s", strings.Join(finding.Problems, "; "))
		}
	}

	return report, nil
}

func newRequest(ctx context.Context, base string, sample render.CurlRequest) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if sample.Body != "" {
		body = strings.NewReader(sample.Body)
	}

	req, err := http.NewRequestWithContext(ctx, string(sample.Method), base+sample.Target(), body)
	if err != nil {
		return nil, err
	}

	if name, value, ok := strings.Cut(sample.AuthHeader, ":"); ok {
		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if sample.Method.Mutating() {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if sample.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// baseURL turns a server URL into a request prefix. Templated or relative
// server URLs are anchored on localhost.
func baseURL(server string) string {
	u, err := url.Parse(server)
	if err != nil || strings.ContainsAny(server, "{}") {
		return defaultBase
	}
	if u.Scheme == "" || u.Host == "" {
		return defaultBase + strings.TrimSuffix(u.Path, "/")
	}
	return strings.TrimSuffix(u.String(), "/")
}

func problems(verrs []*validatorErrors.ValidationError) []string {
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg := e.Message
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		out = append(out, msg)
	}
	return out
}
