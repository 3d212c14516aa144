package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringTransformer lets tests substitute transform.String.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

type defaultTransformer struct{}

func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

var transformer StringTransformer = defaultTransformer{}

// normalizeQuery folds a location query into the form used for cache keys:
// diacritics removed, lower case, inner whitespace collapsed to one space.
// "  São   Paulo " and "sao paulo" normalize to the same value.
func normalizeQuery(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("input string is not valid UTF-8")
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transformer.TransformString(t, s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.Join(strings.Fields(result), " ")), nil
}
