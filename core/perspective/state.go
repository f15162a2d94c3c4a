package perspective

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Bucket string

const (
	BucketGoals     Bucket = "goals"
	BucketFacts     Bucket = "facts"
	BucketQuestions Bucket = "questions"
	BucketOptions   Bucket = "options"
	BucketDecisions Bucket = "decisions"
	BucketNextSteps Bucket = "next_steps"
	BucketRisks     Bucket = "risks"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{
	BucketGoals,
	BucketFacts,
	BucketQuestions,
	BucketOptions,
	BucketDecisions,
	BucketNextSteps,
	BucketRisks,
}

// Source records where a state entry came from.
type Source string

const (
	SourceTool       Source = "tool"
	SourceExtraction Source = "extraction"
	SourceProposal   Source = "proposal"
)

// Entry is a single bucket item. ID is derived from the bucket and the
// lowercased text, so removing and re-adding the same text yields the same ID.
type Entry struct {
	ID      string
	Bucket  Bucket
	Text    string
	Source  Source
	AddedAt time.Time
}

var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/koscakluka/ema-perspective/entry"))

// EntryID returns the stable synthetic id for text in bucket.
func EntryID(bucket Bucket, text string) string {
	return uuid.NewSHA1(entryNamespace, []byte(string(bucket)+":"+key(text))).String()
}

// Lists is the plain, seven bucket shape exchanged with the enrichment gateway
// and the realtime state-update tool.
type Lists struct {
	Goals     []string `json:"goals" jsonschema:"description=What the user is trying to achieve,maxItems=12"`
	Facts     []string `json:"facts" jsonschema:"description=Stated facts and constraints,maxItems=12"`
	Questions []string `json:"questions" jsonschema:"description=Open questions,maxItems=12"`
	Options   []string `json:"options" jsonschema:"description=Alternatives being compared,maxItems=12"`
	Decisions []string `json:"decisions" jsonschema:"description=Decisions already made,maxItems=12"`
	NextSteps []string `json:"next_steps" jsonschema:"description=Agreed next steps,maxItems=12"`
	Risks     []string `json:"risks" jsonschema:"description=Risks and concerns,maxItems=12"`
}

func (l *Lists) Get(bucket Bucket) []string {
	if l == nil {
		return nil
	}
	switch bucket {
	case BucketGoals:
		return l.Goals
	case BucketFacts:
		return l.Facts
	case BucketQuestions:
		return l.Questions
	case BucketOptions:
		return l.Options
	case BucketDecisions:
		return l.Decisions
	case BucketNextSteps:
		return l.NextSteps
	case BucketRisks:
		return l.Risks
	}
	return nil
}

func (l *Lists) Set(bucket Bucket, values []string) {
	switch bucket {
	case BucketGoals:
		l.Goals = values
	case BucketFacts:
		l.Facts = values
	case BucketQuestions:
		l.Questions = values
	case BucketOptions:
		l.Options = values
	case BucketDecisions:
		l.Decisions = values
	case BucketNextSteps:
		l.NextSteps = values
	case BucketRisks:
		l.Risks = values
	}
}

func (l *Lists) Append(bucket Bucket, values ...string) {
	l.Set(bucket, append(l.Get(bucket), values...))
}

// Len is the total number of entries across all buckets.
func (l *Lists) Len() int {
	total := 0
	for _, bucket := range Buckets {
		total += len(l.Get(bucket))
	}
	return total
}

func (l *Lists) IsEmpty() bool { return l.Len() == 0 }

// Patch is a set of additions and removals to apply to a Store.
type Patch struct {
	Add    Lists `json:"add"`
	Remove Lists `json:"remove"`
}

func (p Patch) IsEmpty() bool { return p.Add.IsEmpty() && p.Remove.IsEmpty() }

// Applied reports what a patch actually changed.
type Applied struct {
	Added   Lists
	Removed Lists
}

func (a Applied) IsEmpty() bool { return a.Added.IsEmpty() && a.Removed.IsEmpty() }

// Normalize trims and collapses whitespace in a bucket entry.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func key(text string) string {
	return strings.ToLower(Normalize(text))
}

// Equal reports whether two entries are case-insensitive equal.
func Equal(a, b string) bool {
	return key(a) == key(b)
}
