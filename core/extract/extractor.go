package extract

import (
	"encoding/json"
	"fmt"
)

// Matcher inspects one decoded response shape and returns the embedded text
// when it recognizes the shape. Matchers are pure; new model families are
// supported by appending a matcher, not by touching control flow.
type Matcher func(map[string]interface{}) (string, bool)

// Matchers returns the ordered cascade of known response shapes
func Matchers() []Matcher {
	return []Matcher{
		nestedOutputMessage,
		outputString,
		topLevelMessages,
		stringField("completion"),
		stringField("content"),
		stringField("generated_text"),
		nestedBody,
	}
}

// Text normalizes a decoded model response into a single text payload. The
// shape varies across model families and versions; matchers are tried in
// order and an unrecognized response degrades to its JSON rendering. It
// never fails and never returns an empty string.
func Text(response map[string]interface{}) string {
	for _, match := range Matchers() {
		if text, ok := match(response); ok && text != "" {
			return text
		}
	}
	return stringify(response)
}

// FromJSON decodes a raw response body and normalizes it to text. Bodies
// that are not JSON objects degrade to their literal or stringified form.
func FromJSON(body []byte) string {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return string(body)
	}

	switch v := decoded.(type) {
	case map[string]interface{}:
		return Text(v)
	case string:
		if v != "" {
			return v
		}
		return `""`
	default:
		return stringify(decoded)
	}
}

// nestedOutputMessage handles {"output": {"message": {"content": [{"text": ...}]}}}
func nestedOutputMessage(response map[string]interface{}) (string, bool) {
	output, ok := response["output"].(map[string]interface{})
	if !ok {
		return "", false
	}
	message, ok := output["message"].(map[string]interface{})
	if !ok {
		return "", false
	}
	return firstTextItem(message["content"])
}

// outputString handles {"output": "..."}
func outputString(response map[string]interface{}) (string, bool) {
	output, ok := response["output"].(string)
	return output, ok
}

// topLevelMessages handles {"messages": [{"content": [{"text": ...}]}]}
func topLevelMessages(response map[string]interface{}) (string, bool) {
	messages, ok := response["messages"].([]interface{})
	if !ok || len(messages) == 0 {
		return "", false
	}
	first, ok := messages[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	return firstTextItem(first["content"])
}

// stringField handles a flat {"<field>": "..."} shape
func stringField(field string) Matcher {
	return func(response map[string]interface{}) (string, bool) {
		value, ok := response[field].(string)
		return value, ok
	}
}

// nestedBody handles {"body": ...}, stringifying a structural body
func nestedBody(response map[string]interface{}) (string, bool) {
	body, ok := response["body"]
	if !ok {
		return "", false
	}
	switch v := body.(type) {
	case string:
		return v, true
	case map[string]interface{}:
		return stringify(v), true
	default:
		return "", false
	}
}

func firstTextItem(content interface{}) (string, bool) {
	items, ok := content.([]interface{})
	if !ok {
		return "", false
	}
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if text, ok := entry["text"].(string); ok {
			return text, true
		}
	}
	return "", false
}

func stringify(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
