// Package schemas validates inbound request bodies against JSON Schemas
// before anything is forwarded upstream. Validation failures are reported as
// field-path messages the route layer surfaces in a 422 response.
package schemas

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names accepted by Validate.
const (
	Register = "register"
	Login    = "login"
	Bet      = "bet"
)

const registerSchema = `{
	"type": "object",
	"required": ["email", "password", "full_name"],
	"properties": {
		"email": {
			"type": "string",
			"pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"
		},
		"password": {
			"type": "string",
			"minLength": 6,
			"allOf": [
				{"pattern": "[A-Z]", "description": "at least one uppercase letter"},
				{"pattern": "[a-z]", "description": "at least one lowercase letter"},
				{"pattern": "[0-9]", "description": "at least one digit"}
			]
		},
		"full_name": {
			"type": "string",
			"minLength": 2,
			"maxLength": 100,
			"pattern": "^[^<>&\"']*$"
		}
	}
}`

const loginSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {
			"type": "string",
			"pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"
		},
		"password": {
			"type": "string",
			"minLength": 1
		}
	}
}`

const betSchema = `{
	"type": "object",
	"required": ["event_id", "selected_team", "amount"],
	"properties": {
		"event_id": {
			"type": "integer",
			"minimum": 1
		},
		"selected_team": {
			"type": "string",
			"minLength": 1
		},
		"amount": {
			"type": "number",
			"exclusiveMinimum": 0,
			"maximum": 10000
		}
	}
}`

var compiled = map[string]*jsonschema.Schema{
	Register: jsonschema.MustCompileString("register.json", registerSchema),
	Login:    jsonschema.MustCompileString("login.json", loginSchema),
	Bet:      jsonschema.MustCompileString("bet.json", betSchema),
}

// Validate checks body against the named schema and returns one message per
// violated constraint, or nil when the body is valid. Unknown schema names
// and malformed JSON yield a single message.
func Validate(name string, body []byte) []string {
	schema, ok := compiled[name]
	if !ok {
		return []string{"unknown schema: " + name}
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return []string{"body: invalid JSON"}
	}

	err := schema.Validate(v)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return flatten(ve)
	}
	return []string{"body: " + err.Error()}
}

// flatten walks the validation tree and keeps only leaf causes, prefixed
// with the offending field path.
func flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := strings.TrimPrefix(ve.InstanceLocation, "/")
		if loc == "" {
			loc = "body"
		}
		return []string{strings.ReplaceAll(loc, "/", ".") + ": " + ve.Message}
	}

	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
