package kiosk

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/hashmap"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/msg"
)

type Session struct {
	Id        int64
	StudentId string
	Name      string
	Start     time.Time
}

// State owns all kiosk-side pass state. It's implemented with insert-ordered
// maps since we look sessions up by student frequently but also need the
// checkout order preserved for the snapshot's session list and the waiting
// queue. Key value: session.Id -> *Session, studentId -> name.
type State struct {
	mu sync.Mutex

	sessions *linkedhashmap.Map
	roster   *hashmap.Map
	banned   *hashmap.Map
	waiting  *linkedhashmap.Map

	nextSessionId int64

	cfg    *Config
	stats  *Stats
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func ProvideState(cfg *Config, stats *Stats, clock clockwork.Clock, loggerFactory *infra.LoggerFactory) *State {
	return &State{
		sessions: linkedhashmap.New(),
		roster:   hashmap.New(),
		banned:   hashmap.New(),
		waiting:  linkedhashmap.New(),
		cfg:      cfg,
		stats:    stats,
		clock:    clock,
		logger:   loggerFactory.Create("State").Sugar(),
	}
}

// Scan handles one scanned code and returns the outcome for the scanning
// surface. Every path also leaves the state ready for an immediate
// snapshot broadcast.
func (s *State) Scan(code string) *msg.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.autoEndExpiredLocked(now)

	code = strings.TrimSpace(code)
	if code == "" {
		return scanDenied("", "No code scanned")
	}

	name, known := s.rosterNameLocked(code)
	if !known {
		return scanDenied("", fmt.Sprintf("Unknown ID: %v", code))
	}

	live := s.cfg.Live()

	// If this student currently holds a pass, end their session whatever
	// else is going on. Suspension or a ban never traps someone "out".
	if sess := s.holderLocked(code); sess != nil {
		elapsed := s.endSessionLocked(sess, now)
		if live.AutoBanOverdue && elapsed > time.Duration(live.OverdueMinutes)*time.Minute {
			s.banned.Put(code, true)
			s.logger.Infof("auto-banned student[%v] after overdue pass of %v", name, elapsed)
			scansTotal.WithLabelValues(string(msg.ActionEndedBanned)).Inc()
			return &msg.ScanResult{Ok: true, Action: msg.ActionEndedBanned, Name: name, Message: "Returned overdue"}
		}
		scansTotal.WithLabelValues(string(msg.ActionEnded)).Inc()
		return &msg.ScanResult{Ok: true, Action: msg.ActionEnded, Name: name, Message: "Welcome back"}
	}

	if live.Suspended {
		return scanDenied(name, "Passes are suspended")
	}

	if b, ok := s.banned.Get(code); ok && b.(bool) {
		scansTotal.WithLabelValues(string(msg.ActionBanned)).Inc()
		return &msg.ScanResult{Ok: false, Action: msg.ActionBanned, Name: name, Message: fmt.Sprintf("%v is banned", name)}
	}

	if s.sessions.Size() >= live.Capacity {
		// Scanning while full toggles waiting-list membership.
		scansTotal.WithLabelValues(string(msg.ActionQueuePrompt)).Inc()
		if _, queued := s.waiting.Get(code); queued {
			s.waiting.Remove(code)
			waitingLength.Set(float64(s.waiting.Size()))
			return &msg.ScanResult{Ok: true, Action: msg.ActionQueuePrompt, Name: name, Message: "Removed from waiting list"}
		}
		s.waiting.Put(code, name)
		waitingLength.Set(float64(s.waiting.Size()))
		return &msg.ScanResult{Ok: true, Action: msg.ActionQueuePrompt, Name: name, Message: "Added to waiting list"}
	}

	s.waiting.Remove(code)
	waitingLength.Set(float64(s.waiting.Size()))

	s.nextSessionId++
	s.sessions.Put(s.nextSessionId, &Session{
		Id:        s.nextSessionId,
		StudentId: code,
		Name:      name,
		Start:     now,
	})
	activeSessions.Set(float64(s.sessions.Size()))
	s.logger.Infof("started session[%v] student[%v]", s.nextSessionId, name)

	scansTotal.WithLabelValues(string(msg.ActionStarted)).Inc()
	return &msg.ScanResult{Ok: true, Action: msg.ActionStarted, Name: name}
}

// OverrideEnd force-ends the longest-out session (teacher override button).
func (s *State) OverrideEnd() *msg.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.sessions.Iterator()
	if !it.First() {
		return scanDenied("", "No one is out")
	}
	sess := it.Value().(*Session)
	s.endSessionLocked(sess, s.clock.Now())
	return &msg.ScanResult{Ok: true, Action: msg.ActionEnded, Name: sess.Name, Message: "Ended by override"}
}

// ImportRoster loads id,name rows from CSV, replacing names for known ids.
func (s *State) ImportRoster(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("roster parse: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		id, name := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if id == "" || name == "" {
			continue
		}
		s.roster.Put(id, name)
		count++
	}

	s.logger.Infof("imported %v roster entries", count)
	return count, nil
}

// SetBanned bans or unbans a student. Returns false for unknown ids.
func (s *State) SetBanned(studentId string, banned bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.roster.Get(studentId); !known {
		return false
	}
	s.banned.Put(studentId, banned)
	return true
}

// BuildSnapshot assembles the server-authoritative snapshot consumed by
// every display surface, stamped with the server's generation time.
func (s *State) BuildSnapshot() *msg.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.autoEndExpiredLocked(now)
	live := s.cfg.Live()

	snap := &msg.Snapshot{
		OverdueMinutes: live.OverdueMinutes,
		KioskSuspended: live.Suspended,
		AutoBanOverdue: live.AutoBanOverdue,
		Capacity:       live.Capacity,
		ActiveSessions: make([]msg.SessionInfo, 0, s.sessions.Size()),
		Queue:          make([]string, 0, s.waiting.Size()),
		ServerTimeMs:   now.UnixMilli(),
	}

	it := s.sessions.Iterator()
	for it.Next() {
		sess := it.Value().(*Session)
		elapsed := int64(now.Sub(sess.Start).Seconds())
		snap.ActiveSessions = append(snap.ActiveSessions, msg.SessionInfo{
			Id:      sess.Id,
			Name:    sess.Name,
			Elapsed: elapsed,
			Overdue: elapsed > int64(live.OverdueMinutes)*60,
			StartMs: sess.Start.UnixMilli(),
		})
	}

	wit := s.waiting.Iterator()
	for wit.Next() {
		snap.Queue = append(snap.Queue, wit.Value().(string))
	}

	// Legacy single-pass fields mirror the first session.
	if len(snap.ActiveSessions) > 0 {
		first := snap.ActiveSessions[0]
		snap.InUse = true
		snap.Name = first.Name
		snap.Elapsed = first.Elapsed
		snap.Overdue = first.Overdue
	}

	return snap
}

func (s *State) holderLocked(studentId string) *Session {
	it := s.sessions.Iterator()
	for it.Next() {
		if sess := it.Value().(*Session); sess.StudentId == studentId {
			return sess
		}
	}
	return nil
}

func (s *State) rosterNameLocked(studentId string) (string, bool) {
	if name, ok := s.roster.Get(studentId); ok {
		return name.(string), true
	}
	return "", false
}

// endSessionLocked removes sess and records its duration.
func (s *State) endSessionLocked(sess *Session, now time.Time) time.Duration {
	s.sessions.Remove(sess.Id)
	activeSessions.Set(float64(s.sessions.Size()))

	elapsed := now.Sub(sess.Start)
	s.stats.RecordPass(elapsed)
	s.logger.Infof("ended session[%v] student[%v] after %v", sess.Id, sess.Name, elapsed)
	return elapsed
}

// autoEndExpiredLocked is the failsafe that ends any session exceeding
// MaxMinutes, so a student who never scans back in cannot hold a slot all
// day.
func (s *State) autoEndExpiredLocked(now time.Time) {
	live := s.cfg.Live()
	maxAge := time.Duration(live.MaxMinutes) * time.Minute

	var expired []*Session
	it := s.sessions.Iterator()
	for it.Next() {
		if sess := it.Value().(*Session); now.Sub(sess.Start) > maxAge {
			expired = append(expired, sess)
		}
	}
	for _, sess := range expired {
		s.logger.Warnf("auto-ending expired session[%v] student[%v]", sess.Id, sess.Name)
		s.endSessionLocked(sess, now)
	}
}

func scanDenied(name, message string) *msg.ScanResult {
	scansTotal.WithLabelValues(string(msg.ActionDenied)).Inc()
	return &msg.ScanResult{Ok: false, Action: msg.ActionDenied, Name: name, Message: message}
}
