package cache

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ListSegment marks cache keys holding filtered collections rather than a
// single row.
const ListSegment = "list"

// ListFilters captures the query dimensions that shape a list read. The JSON
// encoding of this struct is embedded in the cache key, so identical logical
// queries always produce identical keys: struct field order is fixed, making
// the encoding deterministic per call site.
type ListFilters struct {
	SearchKey string   `json:"search_key,omitempty"`
	Skip      int      `json:"skip"`
	Limit     int      `json:"limit"`
	Select    []string `json:"select,omitempty"`
}

// ListKey encodes the cache key for a filtered collection read.
// Layout: entity[.scope].list.<base64(filters)>.
func ListKey(entity string, scopeID uint, filters ListFilters) string {
	return strings.Join(keySegments(entity, scopeID, ListSegment, filters), ".")
}

// IDKey encodes the cache key for a single-row read.
// Layout: entity[.scope].<id>.<base64({id})>.
func IDKey(entity string, scopeID uint, id uint) string {
	suffix := struct {
		ID uint `json:"id"`
	}{ID: id}
	return strings.Join(keySegments(entity, scopeID, strconv.FormatUint(uint64(id), 10), suffix), ".")
}

// InvalidationPattern produces a glob covering every key previously issued for
// the entity (and owning scope when present), regardless of filter suffix.
func InvalidationPattern(entity string, scopeID uint) string {
	if scopeID > 0 {
		return fmt.Sprintf("%s.%d*", entity, scopeID)
	}
	return entity + ".*"
}

func keySegments(entity string, scopeID uint, segment string, suffix any) []string {
	segments := make([]string, 0, 4)
	segments = append(segments, entity)
	if scopeID > 0 {
		segments = append(segments, strconv.FormatUint(uint64(scopeID), 10))
	}
	segments = append(segments, segment, encodeSuffix(suffix))
	return segments
}

// encodeSuffix renders the filter object as URL-safe base64 JSON. Encoding is
// total: a marshal failure falls back to the raw string form so a key is
// always produced.
func encodeSuffix(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	return base64.RawURLEncoding.EncodeToString(data)
}
