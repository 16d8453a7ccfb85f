package connectors

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// MatchBody compares an expected response body against the actual one. The
// expected body only needs to be a structural subset of the actual body: every
// key it mentions must be present with an equal value, recursively for nested
// objects. Arrays must match exactly. It returns a description of every
// mismatch, or nil when the expectation holds.
func MatchBody(expected, actual ldvalue.Value) []string {
	return matchAt("", expected, actual)
}

func matchAt(path string, expected, actual ldvalue.Value) []string {
	if expected.Type() != ldvalue.ObjectType {
		if !expected.Equal(actual) {
			return []string{fmt.Sprintf("%s: expected %s, got %s",
				displayPath(path), expected.JSONString(), actual.JSONString())}
		}
		return nil
	}

	if actual.Type() != ldvalue.ObjectType {
		return []string{fmt.Sprintf("%s: expected an object, got %s",
			displayPath(path), actual.JSONString())}
	}

	var diffs []string
	for _, key := range expected.Keys() {
		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		expectedChild := expected.GetByKey(key)
		actualChild, found := actual.TryGetByKey(key)
		if !found {
			diffs = append(diffs, fmt.Sprintf("%s: expected %s, but key is absent",
				displayPath(childPath), expectedChild.JSONString()))
			continue
		}
		diffs = append(diffs, matchAt(childPath, expectedChild, actualChild)...)
	}
	return diffs
}

func displayPath(path string) string {
	if path == "" {
		return "body"
	}
	return "body." + path
}
