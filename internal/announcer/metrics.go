package announcer

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// sessionMetrics tracks synthesis performance for one announcer run.
type sessionMetrics struct {
	sessionID string

	mu         sync.Mutex
	syntheses  int
	totalTime  time.Duration
	totalBytes int
	cacheHits  int
	cacheMiss  int
	errors     int
}

// synthesisSpan tracks a single synthesis call.
type synthesisSpan struct {
	parent *sessionMetrics
	engine string
	text   string
	start  time.Time
}

func newSessionMetrics() *sessionMetrics {
	return &sessionMetrics{
		sessionID: uuid.NewString()[:8],
	}
}

func (m *sessionMetrics) startSynthesis(engine, text string) *synthesisSpan {
	log.Debug("Synthesis started",
		"session", m.sessionID,
		"engine", engine,
		"textLength", len(text))

	return &synthesisSpan{
		parent: m,
		engine: engine,
		text:   text,
		start:  time.Now(),
	}
}

func (s *synthesisSpan) end(audioBytes int, err error) {
	elapsed := time.Since(s.start)

	s.parent.mu.Lock()
	s.parent.syntheses++
	s.parent.totalTime += elapsed
	s.parent.totalBytes += audioBytes
	if err != nil {
		s.parent.errors++
	}
	s.parent.mu.Unlock()

	if err != nil {
		log.Error("Synthesis failed",
			"session", s.parent.sessionID,
			"engine", s.engine,
			"duration", elapsed,
			"err", err)
		return
	}

	log.Debug("Synthesis completed",
		"session", s.parent.sessionID,
		"engine", s.engine,
		"textLength", len(s.text),
		"audioBytes", audioBytes,
		"duration", elapsed)
}

func (m *sessionMetrics) recordCacheResult(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hit {
		m.cacheHits++
	} else {
		m.cacheMiss++
	}
}

// Summary renders a one-line session summary for the shutdown log.
func (m *sessionMetrics) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.cacheHits + m.cacheMiss
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.cacheHits) / float64(total) * 100
	}

	return fmt.Sprintf("syntheses=%d bytes=%d avgDuration=%v cacheHitRate=%.0f%% errors=%d",
		m.syntheses, m.totalBytes, m.avgDuration(), hitRate, m.errors)
}

// avgDuration must be called with the lock held.
func (m *sessionMetrics) avgDuration() time.Duration {
	if m.syntheses == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.syntheses)
}
