package answer

import (
	"github.com/apomuden/apomuden/internal/lang"
	"time"
)

const (
	SourceEmergency     = "Emergency Check"
	SourceKnowledgeBase = "Local Knowledge Base"
	SourceWebSearch     = "Web Search"
	SourceSystem        = "System"
)

const (
	ConfidenceEmergency     = 1.0
	ConfidenceKnowledgeBase = 0.7
	ConfidenceWebSearch     = 0.6
	ConfidenceFallback      = 0.1
	ConfidenceError         = 0.0
)

type Question struct {
	Text string
	// Language is a hint, empty or "auto" means detect from Text.
	Language string
	// Context is an optional passage handed to the model instead of the
	// knowledge base passage.
	Context string
}

type Result struct {
	Answer     string    `json:"answer"`
	Language   lang.Code `json:"language"`
	Confidence *float64  `json:"confidence"`
	// Source is one of the Source constants, the model name or the cited
	// web domain.
	Source      string    `json:"source"`
	IsEmergency bool      `json:"is_emergency"`
	IsError     bool      `json:"is_error"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConfidenceValue returns the confidence, zero when unset.
func (r Result) ConfidenceValue() float64 {
	if r.Confidence == nil {
		return 0
	}
	return *r.Confidence
}

func confidence(c float64) *float64 {
	return &c
}

// Outcome is what a stage of the fallback chain produced, either a result or
// the reason the stage had nothing usable.
type Outcome struct {
	Result *Result
	Reason string
}

func Ok(r Result) Outcome {
	return Outcome{Result: &r}
}

func Failed(reason string) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) Ok() bool {
	return o.Result != nil
}

var fallbackText = map[lang.Code]string{
	lang.English: "I couldn't find a specific answer to your medical question. For accurate medical advice, please consult with a healthcare professional.",
	lang.Akan:    "Mentumi annya nkyerɛaseɛ a ɛfa wo ho asɛm no ho. Sɛ wupɛ nkyerɛkyerɛ a ɛte saa a, yɛsrɛ wo kɔ nhwehwɛmufoɔ nkyɛn wɔ ayaresa mu.",
}

var errorText = map[lang.Code]string{
	lang.English: "I'm sorry, I encountered an error processing your request. Please try again later.",
	lang.Akan:    "Mepa wo kyɛw, m'ani nnye ho. Yɛsrɛ wo san aye akyiri bi.",
}

// Fallback is the apology given when no strategy produced an answer.
func Fallback(code lang.Code) string {
	return lang.Pick(fallbackText, code)
}

// Apology is the text given when resolving failed unexpectedly.
func Apology(code lang.Code) string {
	return lang.Pick(errorText, code)
}
