package templates

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tagfeed/internal/markdown"
)

var builtinsOnce sync.Once

// registerBuiltins installs the blog filters and switches pongo2 to
// Liquid-like output where nothing is escaped unless asked for.
func registerBuiltins() {
	builtinsOnce.Do(func() {
		pongo2.SetAutoescape(false)
		for name, fn := range map[string]func(any, any) (any, error){
			"tagged":            Tagged,
			"xml_escape":        XMLEscape,
			"date_to_xmlschema": DateToXMLSchema,
			"absolute_url":      AbsoluteURL,
		} {
			if err := setFilter(name, adaptFilter(name, fn)); err != nil {
				panic(fmt.Sprintf("templates: register %s: %v", name, err))
			}
		}
	})
}

// Tagged keeps the entries of a post list whose "tags" contain param.
// Entries may be maps or values exposing a Tags field.
func Tagged(input any, param any) (any, error) {
	tag := fmt.Sprint(valueOr(param, ""))
	out := []any{}
	if input == nil || tag == "" {
		return out, nil
	}

	list := reflect.ValueOf(input)
	if list.Kind() != reflect.Slice && list.Kind() != reflect.Array {
		return nil, fmt.Errorf("tagged: expected a list, got %T", input)
	}
	for i := 0; i < list.Len(); i++ {
		entry := list.Index(i).Interface()
		if hasTag(tagsOf(entry), tag) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// XMLEscape escapes text for inclusion in XML element content or attributes.
func XMLEscape(input any, _ any) (any, error) {
	if input == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(fmt.Sprint(input))); err != nil {
		return nil, err
	}
	return buf.String(), nil
}

// DateToXMLSchema formats a time as RFC 3339. Strings are parsed first.
func DateToXMLSchema(input any, _ any) (any, error) {
	switch value := input.(type) {
	case nil:
		return "", nil
	case time.Time:
		return value.Format(time.RFC3339), nil
	case *time.Time:
		if value == nil {
			return "", nil
		}
		return value.Format(time.RFC3339), nil
	case string:
		parsed, err := parseTime(value)
		if err != nil {
			return nil, fmt.Errorf("date_to_xmlschema: %w", err)
		}
		return parsed.Format(time.RFC3339), nil
	default:
		return nil, fmt.Errorf("date_to_xmlschema: unsupported value %T", input)
	}
}

// AbsoluteURL prefixes a site-relative path with the base URL given as param.
func AbsoluteURL(input any, param any) (any, error) {
	target := strings.TrimSpace(fmt.Sprint(valueOr(input, "")))
	base := strings.TrimRight(strings.TrimSpace(fmt.Sprint(valueOr(param, ""))), "/")
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target, nil
	}
	if target == "" {
		return base + "/", nil
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return base + target, nil
}

func parseTime(value string) (time.Time, error) {
	parsed, err := markdown.ParseDate(value)
	if err == nil && parsed.IsZero() {
		err = fmt.Errorf("unrecognised date %q", value)
	}
	return parsed, err
}

func valueOr(value any, fallback any) any {
	if value == nil {
		return fallback
	}
	return value
}

func tagsOf(entry any) any {
	switch typed := entry.(type) {
	case map[string]any:
		return typed["tags"]
	case pongo2.Context:
		return typed["tags"]
	}
	value := reflect.ValueOf(entry)
	for value.Kind() == reflect.Pointer && !value.IsNil() {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	field := value.FieldByName("Tags")
	if !field.IsValid() {
		return nil
	}
	return field.Interface()
}

func hasTag(tags any, tag string) bool {
	switch typed := tags.(type) {
	case nil:
		return false
	case []string:
		for _, candidate := range typed {
			if candidate == tag {
				return true
			}
		}
		return false
	case []any:
		for _, candidate := range typed {
			if fmt.Sprint(candidate) == tag {
				return true
			}
		}
		return false
	case string:
		return typed == tag
	}
	return false
}
