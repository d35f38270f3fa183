package session

import "github.com/oserockets-max/soken-quiz/internal/quizgen"

// State labels for the UI; derived, never stored.
type State string

const (
	StateIdle            State = "idle"
	StateReady           State = "ready"
	StateAwaitingAnswer  State = "awaiting_answer"
	StateShowingFeedback State = "showing_feedback"
)

// ItemView is the current item as shown to the student. The reference
// answer and explanation are withheld until the item has been graded.
type ItemView struct {
	Kind        quizgen.Kind `json:"kind"`
	Question    string       `json:"question"`
	Options     []string     `json:"options,omitempty"`
	Answer      string       `json:"answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// Snapshot is a read-only render of the session. Taking one mutates
// nothing; celebrations are a separate, explicitly idempotent call.
type Snapshot struct {
	State    State          `json:"state"`
	Mode     quizgen.Mode   `json:"mode"`
	Document string         `json:"document,omitempty"`
	Score    int            `json:"score"`
	Total    int            `json:"total"`
	Streak   int            `json:"streak"`
	Answered bool           `json:"answered"`
	Current  *ItemView      `json:"current,omitempty"`
	Result   *quizgen.Grade `json:"result,omitempty"`
	Queued   int            `json:"queued"`
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:    m.state(),
		Mode:     m.mode,
		Document: m.doc.Name,
		Score:    m.score,
		Total:    m.total,
		Streak:   m.streak,
		Answered: m.answered,
		Result:   m.result,
		Queued:   len(m.queue),
	}
	if m.current != nil {
		v := &ItemView{
			Kind:     m.current.Kind,
			Question: m.current.Question,
			Options:  m.current.Options,
		}
		if m.answered {
			v.Answer = m.current.Answer
			v.Explanation = m.current.Explanation
		}
		s.Current = v
	}
	return s
}

func (m *Machine) state() State {
	switch {
	case m.doc.URI == "":
		return StateIdle
	case m.current == nil:
		return StateReady
	case m.answered:
		return StateShowingFeedback
	default:
		return StateAwaitingAnswer
	}
}
