// Package etag converts concurrency tokens to strong entity tags and
// evaluates If-None-Match / If-Match request headers against them.
//
// A tag is the quoted standard Base64 encoding of the token bytes, so
// distinct tokens always produce distinct tags:
//
//	etag.Encode([]byte{0x41}) // "\"QQ==\""
//
// Header evaluation never fails. Malformed header values are simply
// non-matching, which means a conditional GET returns the full
// representation and a conditional write is rejected.
package etag

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// Wildcard is the "any current representation" header value.
const Wildcard = "*"

// Encode returns the strong entity tag for token. A nil or empty token
// encodes to the quoted empty string.
func Encode(token []byte) string {
	return `"` + base64.StdEncoding.EncodeToString(token) + `"`
}

// EncodeVersion returns the entity tag for a monotonically increasing
// counter, using its 8-byte big-endian form as the token.
func EncodeVersion(version uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], version)
	return Encode(buf[:])
}

// Decode reverses Encode. The W/ prefix is tolerated.
func Decode(tag string) ([]byte, bool) {
	value, ok := parseTag(strings.TrimSpace(tag))
	if !ok {
		return nil, false
	}
	token, err := base64.StdEncoding.DecodeString(value[1 : len(value)-1])
	if err != nil {
		return nil, false
	}
	return token, true
}

// MatchesIfNoneMatch reports whether a conditional read should be
// answered with "not modified".
func MatchesIfNoneMatch(headerValues []string, currentTag string) bool {
	return matches(headerValues, currentTag)
}

// MatchesIfMatch reports whether a conditional write may proceed. An
// absent header yields false here; callers that treat "no precondition"
// differently from "precondition failed" should check Present first.
func MatchesIfMatch(headerValues []string, currentTag string) bool {
	return matches(headerValues, currentTag)
}

// Present reports whether any non-blank header value was supplied.
func Present(headerValues []string) bool {
	for _, v := range headerValues {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func matches(headerValues []string, currentTag string) bool {
	if strings.TrimSpace(currentTag) == "" || !Present(headerValues) {
		return false
	}

	current, ok := parseTag(strings.TrimSpace(currentTag))
	if !ok {
		return false
	}

	tags, ok := parseList(headerValues)
	if !ok {
		return false
	}
	for _, tag := range tags {
		if tag == Wildcard || tag == current {
			return true
		}
	}
	return false
}

// parseList splits every header line on commas. One malformed element
// poisons the whole list.
func parseList(headerValues []string) ([]string, bool) {
	var tags []string
	for _, line := range headerValues {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if part == Wildcard {
				tags = append(tags, Wildcard)
				continue
			}
			tag, ok := parseTag(part)
			if !ok {
				return nil, false
			}
			tags = append(tags, tag)
		}
	}
	return tags, len(tags) > 0
}

// parseTag returns the quoted value of an entity tag with any weak
// prefix removed.
func parseTag(s string) (string, bool) {
	s = strings.TrimPrefix(s, "W/")
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	if strings.ContainsRune(s[1:len(s)-1], '"') {
		return "", false
	}
	return s, true
}
