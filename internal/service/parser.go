package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/octobees/lead-gateway/internal/dto"
)

// multipartMemory matches echo's default in-memory budget for multipart bodies.
const multipartMemory = 32 << 20

// ErrUnsupportedContentType is wrapped in a ParseError when the body is neither JSON nor a form.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ParseError reports a body that could not be decoded into a submission.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse submission: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BodyKind is the decoding strategy selected from a Content-Type header.
type BodyKind int

const (
	BodyUnsupported BodyKind = iota
	BodyJSON
	BodyForm
	BodyMultipart
)

// ClassifyContentType picks the decoder for a Content-Type header value.
func ClassifyContentType(contentType string) BodyKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return BodyJSON
	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		return BodyForm
	case strings.Contains(ct, "multipart/form-data"):
		return BodyMultipart
	default:
		return BodyUnsupported
	}
}

// ParseSubmission decodes the request body into a flat string map. It does not
// look at what the fields mean.
func ParseSubmission(r *http.Request) (dto.Submission, error) {
	switch ClassifyContentType(r.Header.Get("Content-Type")) {
	case BodyJSON:
		return decodeJSON(r.Body)
	case BodyForm:
		if err := r.ParseForm(); err != nil {
			return nil, &ParseError{Err: err}
		}
		return fromValues(r.PostForm), nil
	case BodyMultipart:
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, &ParseError{Err: err}
		}
		return fromValues(url.Values(r.MultipartForm.Value)), nil
	default:
		return nil, &ParseError{Err: ErrUnsupportedContentType}
	}
}

func decodeJSON(body io.Reader) (dto.Submission, error) {
	if body == nil {
		return nil, &ParseError{Err: io.ErrUnexpectedEOF}
	}

	dec := json.NewDecoder(body)
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: errors.New("unexpected data after JSON value")}
	}

	object, ok := raw.(map[string]any)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("expected JSON object, got %s", jsonKind(raw))}
	}

	submission := make(dto.Submission, len(object))
	for key, value := range object {
		submission[key] = coerceField(value)
	}
	return submission, nil
}

// fromValues keeps the last value of repeated keys.
func fromValues(values url.Values) dto.Submission {
	submission := make(dto.Submission, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			submission[key] = ""
			continue
		}
		submission[key] = vals[len(vals)-1]
	}
	return submission
}

// coerceField turns a top-level JSON value into its string form. Falsy values
// (null, false, 0, "") become the empty string.
func coerceField(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	}
	return stringify(value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(v)
	}
}

// formatNumber renders a float the way a browser prints numbers: plain
// decimals within [1e-6, 1e21), exponent form outside it.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	s = strings.Replace(s, "e+0", "e+", 1)
	s = strings.Replace(s, "e-0", "e-", 1)
	return s
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
