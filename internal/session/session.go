package session

import (
	"context"
	"errors"

	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/quizgen"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

var (
	ErrNoDocument      = errors.New("no document selected")
	ErrNoQuestions     = errors.New("question generation failed, retry")
	ErrNoCurrent       = errors.New("no current question")
	ErrAlreadyAnswered = errors.New("current question already answered")
	ErrNotAnswered     = errors.New("current question not answered yet")
	ErrNotRetryable    = errors.New("correct answers cannot be retried")
)

// milestoneEvery: a celebration upgrade on every Nth consecutive correct.
const milestoneEvery = 5

// Generator produces validated quiz items for the active document.
type Generator interface {
	GenerateBatch(ctx context.Context, doc gen.Handle, mode quizgen.Mode, history []string) []quizgen.Item
}

// Grader judges a free-text answer.
type Grader interface {
	Grade(ctx context.Context, question, reference, userAnswer string) quizgen.Grade
}

// Celebration is the signal raised after a correct answer; Milestone marks
// the every-5-streak upgrade.
type Celebration struct {
	Milestone bool `json:"milestone"`
	Streak    int  `json:"streak"`
}

// Machine drives one quiz session: a FIFO queue of pending items, at most
// one current item, and score/streak counters. It has a single owner and
// no locking; callers serialize transitions (the HTTP layer holds one
// mutex per session). Every transition runs to completion before the next.
type Machine struct {
	generator Generator
	grader    Grader

	doc     gen.Handle
	mode    quizgen.Mode
	queue   []quizgen.Item
	current *quizgen.Item
	history []string

	score  int
	total  int
	streak int

	answered         bool
	result           *quizgen.Grade
	celebrationShown bool
	retried          bool
}

func New(generator Generator, grader Grader) *Machine {
	return &Machine{generator: generator, grader: grader, mode: quizgen.ModeMixed}
}

// SetDocument switches the active document. Queue, history and the current
// item are stale and dropped; score/total/streak survive, learning progress
// spans documents.
func (m *Machine) SetDocument(doc gen.Handle) {
	m.doc = doc
	m.queue = nil
	m.history = nil
	m.current = nil
	m.answered = false
	m.result = nil
	m.celebrationShown = false
	m.retried = false
}

func (m *Machine) Document() gen.Handle { return m.doc }

// SetMode discards queued items generated under the old mode. The current
// item is kept until answered, even if its kind no longer matches.
func (m *Machine) SetMode(mode quizgen.Mode) error {
	switch mode {
	case quizgen.ModeFreeText, quizgen.ModeChoice, quizgen.ModeMixed:
	default:
		return errors.New("unknown mode: " + string(mode))
	}
	m.mode = mode
	m.queue = nil
	return nil
}

func (m *Machine) Mode() quizgen.Mode { return m.mode }

// Question returns the item to display. If a current item exists it is
// returned as-is (rendering is idempotent). Otherwise the head of the queue
// advances; an empty queue replenishes from the generator first. A failed
// replenish leaves all state untouched so the caller can simply re-trigger.
func (m *Machine) Question(ctx context.Context) (quizgen.Item, error) {
	if m.doc.URI == "" {
		return quizgen.Item{}, ErrNoDocument
	}

	if m.current != nil {
		return *m.current, nil
	}

	if len(m.queue) == 0 {
		items := m.generator.GenerateBatch(ctx, m.doc, m.mode, m.history)
		if len(items) == 0 {
			return quizgen.Item{}, ErrNoQuestions
		}
		m.queue = append(m.queue, items...)
		for _, it := range items {
			m.history = append(m.history, it.Question)
		}
		log := telemetry.L().With().Str("mode", string(m.mode)).Logger()
		log.Info().Int("queued", len(items)).Int("history", len(m.history)).Msg("session_replenished")
	}

	item := m.queue[0]
	m.queue = m.queue[1:]
	m.current = &item
	m.answered = false
	m.result = nil
	m.celebrationShown = false
	return item, nil
}

// Submit grades the answer for the current item and moves the session into
// feedback. total counts the item once: a resubmission after Retry grades
// again but does not increment it a second time.
func (m *Machine) Submit(ctx context.Context, answer string) (quizgen.Grade, error) {
	if m.current == nil {
		return quizgen.Grade{}, ErrNoCurrent
	}
	if m.answered {
		return quizgen.Grade{}, ErrAlreadyAnswered
	}

	if m.retried {
		m.retried = false
	} else {
		m.total++
	}

	var grade quizgen.Grade
	if m.current.Kind == quizgen.KindChoice {
		grade = quizgen.GradeChoice(answer, m.current.Answer)
	} else {
		grade = m.grader.Grade(ctx, m.current.Question, m.current.Answer, answer)
	}

	m.result = &grade
	m.answered = true

	if grade.Verdict == quizgen.VerdictCorrect {
		m.score++
		m.streak++
	} else {
		m.streak = 0
	}

	log := telemetry.L().With().Str("verdict", string(grade.Verdict)).Logger()
	log.Info().Int("score", m.score).Int("total", m.total).Int("streak", m.streak).Msg("session_graded")
	return grade, nil
}

// Celebration fires at most once per current item, only on a correct
// verdict. The milestone check wins over the plain per-answer celebration.
// Repeated calls while the same feedback is rendered return nil.
func (m *Machine) Celebration() *Celebration {
	if !m.answered || m.result == nil || m.result.Verdict != quizgen.VerdictCorrect || m.celebrationShown {
		return nil
	}
	m.celebrationShown = true
	return &Celebration{
		Milestone: m.streak > 0 && m.streak%milestoneEvery == 0,
		Streak:    m.streak,
	}
}

// Next discards the graded item; the session becomes advance-eligible.
func (m *Machine) Next() error {
	if m.current == nil {
		return ErrNoCurrent
	}
	if !m.answered {
		return ErrNotAnswered
	}
	m.current = nil
	m.answered = false
	m.result = nil
	return nil
}

// Retry reopens the current item after a wrong or partial answer. The
// streak stays reset: the miss already happened. The item was already
// counted, so the resubmission it enables will not touch total.
func (m *Machine) Retry() error {
	if m.current == nil || !m.answered || m.result == nil {
		return ErrNotAnswered
	}
	if m.result.Verdict == quizgen.VerdictCorrect {
		return ErrNotRetryable
	}
	m.answered = false
	m.result = nil
	m.retried = true
	return nil
}

func (m *Machine) Score() int                 { return m.score }
func (m *Machine) Total() int                 { return m.total }
func (m *Machine) Streak() int                { return m.streak }
func (m *Machine) Answered() bool             { return m.answered }
func (m *Machine) Result() *quizgen.Grade     { return m.result }
func (m *Machine) Current() *quizgen.Item     { return m.current }
func (m *Machine) QueueLen() int              { return len(m.queue) }
func (m *Machine) History() []string          { return m.history }
