package enrichment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
	"github.com/koscakluka/ema-perspective/internal/utils"
)

// decodeLenient decodes raw model output into v. It tries the text as is,
// then the body of the first fenced code block, then the substring between
// the first opening and the last closing brace (or bracket).
func decodeLenient(raw string, v any) bool {
	for _, candidate := range candidates(raw) {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return true
		}
	}
	return false
}

func candidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := []string{raw}

	if split := strings.Split(raw, "```"); len(split) > 2 {
		fenced := strings.TrimSpace(split[1])
		fenced = strings.TrimSpace(strings.TrimPrefix(fenced, "json"))
		out = append(out, fenced)
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start >= 0 && end > start {
			out = append(out, raw[start:end+1])
		}
	}
	return out
}

// ParseState turns raw model output into the seven bucket shape. Missing or
// malformed buckets are empty, non-string entries are dropped, a bare string
// becomes a single entry, and each bucket is trimmed, deduplicated and capped.
// The boolean reports whether any JSON object could be decoded.
func ParseState(raw string) (perspective.Lists, bool) {
	var object map[string]json.RawMessage
	if !decodeLenient(raw, &object) {
		return perspective.Lists{}, false
	}
	if nested, ok := object["state"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			object = inner
		}
	}

	var lists perspective.Lists
	for _, bucket := range perspective.Buckets {
		lists.Set(bucket, coerceStrings(object[string(bucket)]))
	}
	return lists, true
}

func coerceStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		values = []any{single}
	}

	var out []string
	seen := map[string]bool{}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = perspective.Normalize(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
		if len(out) == MaxBucketEntries {
			break
		}
	}
	return out
}

// ParseSummary accepts either {"summary": "..."} or plain text.
func ParseSummary(raw string) string {
	var object struct {
		Summary string `json:"summary"`
	}
	if decodeLenient(raw, &object) && strings.TrimSpace(object.Summary) != "" {
		return strings.TrimSpace(object.Summary)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "```") {
		return ""
	}
	return raw
}

// ParseProposals accepts {"proposals": [...]} or a bare array. Entries with an
// unknown type or missing fields are skipped; numeric fields may be numbers
// or numeric strings. Every proposal is tagged with source.
func ParseProposals(raw string, source proposals.Source) ([]proposals.Proposal, bool) {
	var items []map[string]any
	var wrapped struct {
		Proposals []map[string]any `json:"proposals"`
	}
	switch {
	case decodeLenient(raw, &wrapped) && wrapped.Proposals != nil:
		items = wrapped.Proposals
	case decodeLenient(raw, &items):
	default:
		return nil, false
	}

	var out []proposals.Proposal
	for _, item := range items {
		p, ok := proposalFromMap(item, source)
		if !ok {
			continue
		}
		out = append(out, p)
		if len(out) == MaxProposals {
			break
		}
	}
	return out, true
}

func proposalFromMap(item map[string]any, source proposals.Source) (proposals.Proposal, bool) {
	kind := proposals.Kind(stringField(item, "type"))
	if kind == "" {
		kind = proposals.Kind(stringField(item, "kind"))
	}

	p := proposals.Proposal{
		Kind:      kind,
		Source:    source,
		Option:    stringField(item, "option"),
		Criterion: stringField(item, "criterion"),
		Rationale: stringField(item, "rationale"),
	}
	if kind == proposals.KindSetCell {
		p.Weight = int(math.Round(utils.Clamp(numberField(item, "weight"), proposals.MinWeight, proposals.MaxWeight)))
		p.Confidence = numberField(item, "confidence")
		if anchors, ok := item["anchors"].([]any); ok {
			for _, a := range anchors {
				if s, ok := a.(string); ok {
					p.Anchors = append(p.Anchors, proposals.Anchor(s))
				}
			}
		}
	}
	return p, p.Valid()
}

func stringField(item map[string]any, name string) string {
	s, _ := item[name].(string)
	return strings.TrimSpace(s)
}

func numberField(item map[string]any, name string) float64 {
	switch v := item[name].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return 0
}
