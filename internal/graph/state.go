package graph

// State is the record threaded through a single run. It is owned by the run
// and never shared.
type State struct {
	Question        string
	Documents       []string
	WebSearchNeeded bool
	Answer          string
	NumRetries      int
	MaxRetries      int
}

// NewState starts a run for question with the given retry ceiling.
func NewState(question string, maxRetries int) *State {
	return &State{
		Question:   question,
		MaxRetries: maxRetries,
	}
}

// Label is one discrete judgment returned by the model.
type Label string

const (
	LabelVectorstore Label = "vectorstore"
	LabelWebsearch   Label = "websearch"

	LabelYes Label = "yes"
	LabelNo  Label = "no"

	LabelGood Label = "good"
	LabelBad  Label = "bad"
)

// Label sets offered at each decision point.
var (
	RouteLabels         = []Label{LabelVectorstore, LabelWebsearch}
	RelevanceLabels     = []Label{LabelYes, LabelNo}
	HallucinationLabels = []Label{LabelGood, LabelBad}
)
