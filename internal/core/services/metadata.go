package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// pageNoKeys are the alternate keys a page number may arrive under,
// checked in order. Different extraction backends disagree on the name.
var pageNoKeys = []string{"page_no", "page", "page_number"}

// droppedMetadataKeys are large structural fields produced by document
// extraction that carry no retrieval value once the page number has been
// lifted out. Deliberately discarded rather than stringified.
var droppedMetadataKeys = map[string]bool{
	"doc_items":   true,
	"origin":      true,
	"headings":    true,
	"schema_name": true,
	"version":     true,
}

// NormalizeMetadata flattens arbitrary per-passage metadata into the fixed
// scalar schema a collection store can index. The result always contains
// "file_name" and "page_no", and every value is a string, int, float64 or
// bool. The function is total and deterministic: it never fails and
// identical input yields identical output. No I/O.
func NormalizeMetadata(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+2)

	out[domain.MetadataKeyFileName] = normalizeFileName(raw)
	out[domain.MetadataKeyPageNo] = normalizePageNo(raw)

	// Deterministic iteration keeps stringified fallbacks stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == domain.MetadataKeyFileName || isPageKey(k) || droppedMetadataKeys[k] {
			continue
		}
		switch v := raw[k].(type) {
		case string, int, float64, bool:
			out[k] = v
		case int64:
			out[k] = int(v)
		case float32:
			out[k] = float64(v)
		default:
			// Never silently lose a key: keep a string representation.
			out[k] = fmt.Sprintf("%v", v)
		}
	}

	return out
}

// normalizeFileName reads the source file name, defaulting when absent.
func normalizeFileName(raw map[string]any) string {
	if v, ok := raw[domain.MetadataKeyFileName].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return domain.FileNameUnknown
}

// normalizePageNo resolves the page number from any known key, including
// the nested doc_items[0].prov[0].page_no path, taking the first element of
// sequences and coercing to int. Absent or non-coercible values yield the
// "N/A" sentinel.
func normalizePageNo(raw map[string]any) any {
	for _, key := range pageNoKeys {
		if v, ok := raw[key]; ok {
			if n, ok := coercePage(v); ok {
				return n
			}
		}
	}
	if n, ok := coercePage(nestedPageNo(raw)); ok {
		return n
	}
	return domain.PageUnknown
}

// nestedPageNo walks doc_items[0].prov[0].page_no, the layout used by
// structure-aware PDF extraction.
func nestedPageNo(raw map[string]any) any {
	items, ok := raw["doc_items"].([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		return nil
	}
	prov, ok := item["prov"].([]any)
	if !ok || len(prov) == 0 {
		return nil
	}
	entry, ok := prov[0].(map[string]any)
	if !ok {
		return nil
	}
	return entry["page_no"]
}

// coercePage converts a candidate page value to int. Sequences contribute
// their first element.
func coercePage(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	case []any:
		if len(val) == 0 {
			return 0, false
		}
		return coercePage(val[0])
	case []int:
		if len(val) == 0 {
			return 0, false
		}
		return val[0], true
	default:
		return 0, false
	}
}

// isPageKey reports whether k is one of the recognised page-number keys.
func isPageKey(k string) bool {
	for _, key := range pageNoKeys {
		if k == key {
			return true
		}
	}
	return false
}
