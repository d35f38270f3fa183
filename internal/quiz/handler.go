package quiz

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/oserockets-max/soken-quiz/internal/config"
	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/quizgen"
	"github.com/oserockets-max/soken-quiz/internal/session"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
	"github.com/oserockets-max/soken-quiz/internal/ws"
)

// callTimeout bounds one user-visible action end to end, including the
// blocking generation or grading call inside it.
const callTimeout = 120 * time.Second

const sweepInterval = 10 * time.Minute

// sessionEntry serializes transitions: while a generation or grading call
// is in flight for a session, no other mutation of that session may run.
type sessionEntry struct {
	mu       sync.Mutex
	m        *session.Machine
	lastSeen time.Time
}

type Handler struct {
	cfg *config.Config
	svc *Service

	generator *quizgen.Generator
	grader    *quizgen.Grader

	smu      sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewHandler(cfg *config.Config, svc *Service, client *gen.Client, model string) *Handler {
	h := &Handler{
		cfg:       cfg,
		svc:       svc,
		generator: quizgen.NewGenerator(client, model, cfg.QuizBatchSize, cfg.QuizHistoryLimit),
		grader:    quizgen.NewGrader(client, model),
		sessions:  make(map[string]*sessionEntry),
	}
	go h.janitor(cfg.SessionTTL)
	return h
}

func (h *Handler) entry(id string) (*sessionEntry, bool) {
	h.smu.Lock()
	defer h.smu.Unlock()
	e, ok := h.sessions[id]
	if ok {
		e.lastSeen = time.Now()
	}
	return e, ok
}

// janitor evicts sessions nobody has touched within maxIdle. Session state
// is in-memory only, so an abandoned session has nothing worth keeping.
func (h *Handler) janitor(maxIdle time.Duration) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for range t.C {
		if n := h.sweep(maxIdle); n > 0 {
			log := telemetry.L().With().Int("evicted", n).Logger()
			log.Info().Msg("session_sweep")
		}
	}
}

func (h *Handler) sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		maxIdle = 2 * time.Hour
	}
	cutoff := time.Now().Add(-maxIdle)

	h.smu.Lock()
	defer h.smu.Unlock()
	n := 0
	for id, e := range h.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.svc.ListDocuments(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(docs)
}

func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	fh, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("document required")
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("cannot open document")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("cannot read document")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), callTimeout)
	defer cancel()
	docID, _, err := h.svc.UploadDocument(ctx, fh.Filename, data)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"id": docID, "name": fh.Filename})
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	id := uuid.New().String()
	e := &sessionEntry{m: session.New(h.generator, h.grader), lastSeen: time.Now()}
	h.smu.Lock()
	h.sessions[id] = e
	h.smu.Unlock()
	return c.JSON(fiber.Map{"id": id, "session": e.m.Snapshot()})
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	h.smu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.smu.Unlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	e, ok := h.entry(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return c.JSON(e.m.Snapshot())
}

func (h *Handler) SelectDocument(c *fiber.Ctx) error {
	e, ok := h.entry(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}

	var body struct {
		DocumentID string `json:"document_id"`
		Name       string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil || body.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("document_id required")
	}
	if body.Name == "" {
		body.Name = body.DocumentID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.UserContext(), callTimeout)
	defer cancel()
	handle, err := h.svc.LoadDocument(ctx, body.DocumentID, body.Name)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	e.m.SetDocument(handle)
	ws.Broadcast(c.Params("id"), ws.EventDocumentReady, fiber.Map{"document": body.Name})
	return c.JSON(e.m.Snapshot())
}

func (h *Handler) SetMode(c *fiber.Ctx) error {
	e, ok := h.entry(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}

	var body struct {
		Mode quizgen.Mode `json:"mode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("mode required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.m.SetMode(body.Mode); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(e.m.Snapshot())
}

func (h *Handler) Question(c *fiber.Ctx) error {
	id := c.Params("id")
	e, ok := h.entry(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.UserContext(), callTimeout)
	defer cancel()
	if _, err := e.m.Question(ctx); err != nil {
		if errors.Is(err, session.ErrNoQuestions) {
			ws.Broadcast(id, ws.EventGenerationFailed, nil)
		}
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	snap := e.m.Snapshot()
	ws.Broadcast(id, ws.EventQuestion, snap.Current)
	return c.JSON(snap)
}

func (h *Handler) Answer(c *fiber.Ctx) error {
	id := c.Params("id")
	e, ok := h.entry(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("answer required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.UserContext(), callTimeout)
	defer cancel()
	grade, err := e.m.Submit(ctx, body.Answer)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	snap := e.m.Snapshot()
	ws.Broadcast(id, ws.EventGraded, fiber.Map{
		"grade": grade, "score": snap.Score, "total": snap.Total, "streak": snap.Streak,
	})
	if cel := e.m.Celebration(); cel != nil {
		event := ws.EventCelebration
		if cel.Milestone {
			event = ws.EventMilestone
		}
		ws.Broadcast(id, event, cel)
	}
	return c.JSON(snap)
}

func (h *Handler) NextQuestion(c *fiber.Ctx) error {
	return h.transition(c, func(m *session.Machine) error { return m.Next() })
}

func (h *Handler) RetryQuestion(c *fiber.Ctx) error {
	return h.transition(c, func(m *session.Machine) error { return m.Retry() })
}

func (h *Handler) transition(c *fiber.Ctx, fn func(*session.Machine) error) error {
	e, ok := h.entry(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("session not found")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.m); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(e.m.Snapshot())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoDocument),
		errors.Is(err, session.ErrNoCurrent),
		errors.Is(err, session.ErrAlreadyAnswered),
		errors.Is(err, session.ErrNotAnswered),
		errors.Is(err, session.ErrNotRetryable):
		return fiber.StatusConflict
	case errors.Is(err, gen.ErrFileNotReady):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}
