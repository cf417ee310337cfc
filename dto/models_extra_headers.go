package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtraHeaders is a comma separated key=value string, usable as a pflag.Value.
type ExtraHeaders map[string]string

func (e ExtraHeaders) String() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// Set Value should be a comma seperated key=value string
func (e ExtraHeaders) Set(s string) error {
	for _, header := range strings.Split(s, ",") {
		if strings.TrimSpace(header) == "" {
			continue
		}
		key, value, found := strings.Cut(header, "=")
		if !found || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid header %q: want key=value", header)
		}
		e[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return nil
}

func (e ExtraHeaders) Type() string {
	return "ExtraHeaders"
}
