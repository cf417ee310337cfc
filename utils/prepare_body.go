package utils

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// PrepareBody encodes body for the given content type.
// Raw []byte and string bodies are sent untouched.
func PrepareBody(body any, contentType string) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}

	switch b := body.(type) {
	case []byte:
		return b, contentType, nil
	case string:
		return []byte(b), contentType, nil
	case json.RawMessage:
		return b, ContentTypeJSON, nil
	}

	mediaType := ContentTypeJSON
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, "", fmt.Errorf("parse content type %q: %w", contentType, err)
		}
		mediaType = strings.ToLower(parsed)
	}

	switch mediaType {
	case ContentTypeJSON:
		buf, err := json.Marshal(body)
		return buf, ContentTypeJSON, err
	case ContentTypeForm:
		vals, err := formValues(body)
		if err != nil {
			return nil, "", err
		}
		return []byte(vals.Encode()), ContentTypeForm, nil
	default:
		return nil, "", fmt.Errorf("unsupported body_type: %s", contentType)
	}
}

func formValues(body any) (url.Values, error) {
	switch b := body.(type) {
	case url.Values:
		return b, nil
	case map[string]string:
		vals := url.Values{}
		for k, v := range b {
			vals.Set(k, v)
		}
		return vals, nil
	case map[string]any:
		vals := url.Values{}
		for k, v := range b {
			vals.Set(k, fmt.Sprintf("%v", v))
		}
		return vals, nil
	default:
		return nil, fmt.Errorf("form body must be a map, got %T", body)
	}
}
