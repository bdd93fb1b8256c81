package graph

import "fmt"

// Node identifies one step of the run.
type Node int

const (
	RouteQuestion Node = iota
	RetrieveLocal
	CheckRelevance
	WebSearch
	Generate
	CheckHallucination
	// End is the pseudo-node reached with a terminal outcome.
	End
)

var nodeNames = map[Node]string{
	RouteQuestion:      "route_question",
	RetrieveLocal:      "retrieve_local",
	CheckRelevance:     "check_relevance",
	WebSearch:          "web_search",
	Generate:           "generate",
	CheckHallucination: "check_hallucination",
	End:                "end",
}

func (n Node) String() string {
	if name, ok := nodeNames[n]; ok {
		return name
	}
	return fmt.Sprintf("node(%d)", int(n))
}

// Outcome is how a run ended.
type Outcome string

const (
	Accepted  Outcome = "accepted"
	Aborted   Outcome = "aborted"
	Cancelled Outcome = "cancelled"
	// Failed is reported alongside a collaborator error.
	Failed Outcome = "failed"
)

// Transition is the result of Next. Outcome is set only when To is End.
type Transition struct {
	To      Node
	Outcome Outcome
}

// Next returns the node that follows from after it produced label. It only
// reads s. Label is consulted for RouteQuestion and CheckHallucination;
// CheckRelevance reads s.WebSearchNeeded.
func Next(from Node, label Label, s *State) (Transition, error) {
	switch from {
	case RouteQuestion:
		switch label {
		case LabelVectorstore:
			return Transition{To: RetrieveLocal}, nil
		case LabelWebsearch:
			return Transition{To: WebSearch}, nil
		}
		return Transition{}, Malformed(label, RouteLabels)

	case RetrieveLocal:
		return Transition{To: CheckRelevance}, nil

	case CheckRelevance:
		if s.WebSearchNeeded {
			return Transition{To: WebSearch}, nil
		}
		return Transition{To: Generate}, nil

	case WebSearch:
		return Transition{To: Generate}, nil

	case Generate:
		return Transition{To: CheckHallucination}, nil

	case CheckHallucination:
		switch label {
		case LabelGood:
			return Transition{To: End, Outcome: Accepted}, nil
		case LabelBad:
			// MaxRetries bounds the regenerations after the first attempt,
			// so a run makes at most MaxRetries+1 generation calls: with
			// MaxRetries 2 and three bad grades the run aborts after the
			// third attempt, and MaxRetries 0 aborts after the first. A
			// strict < here would stop one attempt early.
			if s.NumRetries <= s.MaxRetries {
				return Transition{To: WebSearch}, nil
			}
			return Transition{To: End, Outcome: Aborted}, nil
		}
		return Transition{}, Malformed(label, HallucinationLabels)
	}

	return Transition{}, fmt.Errorf("no transition from %s", from)
}
