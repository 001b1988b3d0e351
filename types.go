package main

// Content types recognised by the pipeline. Anything else normalises to guide.
const (
	TypeHowTo      = "how-to"
	TypeGuide      = "guide"
	TypeBest       = "best"
	TypeComparison = "comparison"
	TypeReview     = "review"
)

// ContentTypes lists every recognised content type, in template order.
var ContentTypes = []string{TypeHowTo, TypeGuide, TypeBest, TypeComparison, TypeReview}

// Article lifecycle states. Within one fill cycle the status only moves
// forward: draft→filled or draft→blocked. Blocked is terminal until reset by
// hand; queue entries and use cases use todo→generated.
const (
	StatusDraft     = "draft"
	StatusGenerated = "generated"
	StatusFilled    = "filled"
	StatusTodo      = "todo"
	StatusBlocked   = "blocked"
)

// Audience levels, used only by the internal-link selector's adjacency rule.
const (
	AudienceBeginner     = "beginner"
	AudienceIntermediate = "intermediate"
	AudienceProfessional = "professional"
)

// FillOutcome is the total enumeration of per-article fill results.
type FillOutcome string

const (
	OutcomeWrote       FillOutcome = "wrote"
	OutcomeWouldFill   FillOutcome = "would_fill"
	OutcomeBlocked     FillOutcome = "blocked"
	OutcomeQAFail      FillOutcome = "qa_fail"
	OutcomeQualityFail FillOutcome = "quality_fail"
	OutcomeAPIFail     FillOutcome = "api_fail"
	OutcomeSkip        FillOutcome = "skip"
)

// FillResult tracks the outcome of filling one article.
type FillResult struct {
	Path    string
	Slug    string
	Outcome FillOutcome
	Reasons []string
	Err     error
}

// QueueEntry is a materialisation directive derived from one use case.
type QueueEntry struct {
	Title          string `yaml:"title"`
	ContentType    string `yaml:"content_type"`
	Category       string `yaml:"category"`
	PrimaryKeyword string `yaml:"primary_keyword"`
	Tools          string `yaml:"tools"`
	PrimaryTool    string `yaml:"primary_tool"`
	SecondaryTool  string `yaml:"secondary_tool"`
	AudienceType   string `yaml:"audience_type"`
	BatchID        string `yaml:"batch_id"`
	Status         string `yaml:"status"`
}

// UseCase is a business problem seeding one queue entry.
type UseCase struct {
	Problem              string `yaml:"problem"`
	SuggestedContentType string `yaml:"suggested_content_type"`
	CategorySlug         string `yaml:"category_slug"`
	AudienceType         string `yaml:"audience_type"`
	BatchID              string `yaml:"batch_id"`
	Status               string `yaml:"status"`
}

// Tool is one entry of the affiliate tool catalogue.
type Tool struct {
	Name               string `yaml:"name"`
	Category           string `yaml:"category"`
	AffiliateLink      string `yaml:"affiliate_link"`
	ShortDescriptionEn string `yaml:"short_description_en"`
}

// MappingEntry assigns one or two catalogue tools to a use-case problem.
type MappingEntry struct {
	Problem string   `yaml:"problem"`
	Tools   []string `yaml:"tools"`
}

// normalizeContentType maps unknown content types to guide. The second
// return reports whether the input was already a recognised type.
func normalizeContentType(ct string) (string, bool) {
	for _, known := range ContentTypes {
		if ct == known {
			return ct, true
		}
	}
	return TypeGuide, false
}
