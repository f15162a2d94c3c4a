package perspective

import (
	"regexp"
)

// ReconcileAgainstExtraction computes the patch that brings the store toward
// an extracted target state. Missing target entries are always added. A local
// entry absent from the target is removed only when it is on topic for the
// last user utterance (or the target) and the utterance either carries a
// retraction marker or the target holds a strongly overlapping replacement.
// Anything else is kept.
func (s *Store) ReconcileAgainstExtraction(extracted Lists, lastUserUtterance string) Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var patch Patch

	utteranceTokens := tokenize(lastUserUtterance)
	negated := s.matcher.HasNegation(lastUserUtterance)

	var targetTokens [][]string
	for _, bucket := range Buckets {
		for _, text := range extracted.Get(bucket) {
			if tokens := tokenize(text); len(tokens) > 0 {
				targetTokens = append(targetTokens, tokens)
			}
		}
	}

	for _, bucket := range Buckets {
		targetKeys := map[string]bool{}
		for _, text := range extracted.Get(bucket) {
			text = Normalize(text)
			k := key(text)
			if k == "" || targetKeys[k] {
				continue
			}
			targetKeys[k] = true
			if s.indexOf(bucket, text) < 0 {
				patch.Add.Append(bucket, text)
			}
		}

		for _, entry := range s.buckets[bucket] {
			if targetKeys[key(entry.Text)] {
				continue
			}
			if removalJustified(tokenize(entry.Text), utteranceTokens, targetTokens, negated) {
				patch.Remove.Append(bucket, entry.Text)
			}
		}
	}
	return patch
}

func removalJustified(candidate, utterance []string, targets [][]string, negated bool) bool {
	if len(candidate) == 0 {
		return false
	}

	topical := sharedKeywords(candidate, utterance) > 0
	replaced := false
	for _, target := range targets {
		if sharedKeywords(candidate, target) > 0 {
			topical = true
		}
		if strongOverlap(candidate, target) {
			replaced = true
		}
	}
	if !topical {
		return false
	}
	return negated || replaced
}

var negatedStatement = regexp.MustCompile(`(?i)\b(not|no|never|none|isn'?t|aren'?t|don'?t|doesn'?t|won'?t|can'?t|cannot)\b`)

// Conflict is a pair of entries in the same bucket that say opposite things
// about the same subject.
type Conflict struct {
	Bucket Bucket
	A      Entry
	B      Entry
}

// Conflicts returns entry pairs that strongly overlap but differ in polarity.
func (s *Store) Conflicts() []Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conflicts []Conflict
	for _, bucket := range Buckets {
		entries := s.buckets[bucket]
		for i := 0; i < len(entries); i++ {
			a := tokenize(entries[i].Text)
			for j := i + 1; j < len(entries); j++ {
				b := tokenize(entries[j].Text)
				if !strongOverlap(a, b) {
					continue
				}
				if negatedStatement.MatchString(entries[i].Text) == negatedStatement.MatchString(entries[j].Text) {
					continue
				}
				conflicts = append(conflicts, Conflict{Bucket: bucket, A: entries[i], B: entries[j]})
			}
		}
	}
	return conflicts
}
