// Package airesponse turns free-form model output into validated records.
//
// Raw text is normalized (code fences stripped), parsed as a JSON object,
// and checked against a contract's required keys. Failures are reported as
// *Error values whose kind is one of ErrMalformedDocument, ErrSchemaMismatch
// or ErrUpstreamFailure, and which keep the raw text for diagnostics.
package airesponse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Test with errors.Is.
var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrUpstreamFailure   = errors.New("upstream failure")
)

// Error describes a failed model response.
type Error struct {
	// Kind is ErrMalformedDocument, ErrSchemaMismatch or ErrUpstreamFailure.
	Kind error
	// Contract names the contract being checked, if any.
	Contract string
	// Raw is the unmodified model output.
	Raw string
	// Fields lists missing or invalid keys for ErrSchemaMismatch.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Contract != "" {
		b.WriteString(e.Contract)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (fields: %s)", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Upstream wraps a failed call to a model provider.
func Upstream(contract string, err error) error {
	return &Error{Kind: ErrUpstreamFailure, Contract: contract, Err: err}
}

// RawText returns the raw model output carried by err, if any.
func RawText(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return ""
}

// KindName returns a short machine-readable name for the failure kind of
// err, or "" when err is not a response error.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrUpstreamFailure):
		return "upstream_failure"
	default:
		return ""
	}
}

const fence = "```"

// Normalize strips a ```json or plain ``` code fence wrapping the text.
// Text without a wrapping fence is returned trimmed.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, fence) {
		return s
	}
	switch {
	case strings.HasPrefix(s, fence+"json") && len(s) >= len(fence+"json")+len(fence):
		return strings.TrimSpace(s[len(fence+"json") : len(s)-len(fence)])
	case strings.HasPrefix(s, fence) && len(s) >= 2*len(fence):
		return strings.TrimSpace(s[len(fence) : len(s)-len(fence)])
	default:
		return s
	}
}

// Key is a required contract key with optional localized aliases.
type Key struct {
	Name    string
	Aliases []string
}

// Contract is a named set of required keys.
type Contract struct {
	Name     string
	Required []Key
}

// Decode normalizes and parses raw, then checks the required keys. When a
// required key is only present under an alias, its value is copied to the
// canonical name. Numbers are decoded as json.Number.
func (c Contract) Decode(raw string) (map[string]any, error) {
	doc, err := parseObject(Normalize(raw))
	if err != nil {
		return nil, &Error{Kind: ErrMalformedDocument, Contract: c.Name, Raw: raw, Err: err}
	}

	var missing []string
	for _, key := range c.Required {
		if _, ok := doc[key.Name]; ok {
			continue
		}
		found := false
		for _, alias := range key.Aliases {
			if v, ok := doc[alias]; ok {
				doc[key.Name] = v
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: ErrSchemaMismatch, Contract: c.Name, Raw: raw, Fields: missing}
	}
	return doc, nil
}

// parseObject parses s as a single JSON object.
func parseObject(s string) (map[string]any, error) {
	if s == "" {
		return nil, errors.New("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not an object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after document")
	}
	return doc, nil
}
