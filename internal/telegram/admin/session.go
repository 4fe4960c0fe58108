package admin

import (
	"fmt"
	"time"
)

// Состояния ожидания ввода в панели администратора.
const (
	StateLinkValue   = "link_value"
	StateContentText = "content_text"
	StateParamValue  = "param_value"
	StateBcastText   = "bcast_text"
	StateBcastPhoto  = "bcast_photo"
)

const sessionTTL = 30 * time.Minute

// AdminSession ожидание ввода от администратора. Хранится в redis,
// чтобы рестарт бота не терял начатый диалог.
type AdminSession struct {
	State  string `json:"state"`
	Key    string `json:"key,omitempty"`    // редактируемый ключ config
	Lang   string `json:"lang,omitempty"`   // язык редактируемого контента
	Screen string `json:"screen,omitempty"` // экран редактируемого контента
	Param  string `json:"param,omitempty"`  // firstdep или platinum
}

// SessionCache методы кэша, нужные сессиям.
type SessionCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Sessions redis-хранилище состояний админки и выбранных сегментов рассылки.
type Sessions struct {
	cache SessionCache
}

// NewSessions создаёт хранилище сессий.
func NewSessions(cache SessionCache) *Sessions {
	return &Sessions{cache: cache}
}

func sessionKey(adminID int64) string {
	return fmt.Sprintf("adm:session:%d", adminID)
}

func segmentKey(adminID int64) string {
	return fmt.Sprintf("adm:segment:%d", adminID)
}

// Get возвращает сессию администратора, nil если ввод не ожидается.
func (s *Sessions) Get(adminID int64) (*AdminSession, error) {
	var session AdminSession
	found, err := s.cache.Get(sessionKey(adminID), &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &session, nil
}

// Set сохраняет сессию администратора.
func (s *Sessions) Set(adminID int64, session *AdminSession) error {
	return s.cache.Set(sessionKey(adminID), session, sessionTTL)
}

// Clear завершает диалог.
func (s *Sessions) Clear(adminID int64) error {
	return s.cache.Invalidate(sessionKey(adminID))
}

// Segment выбранный сегмент рассылки администратора, по умолчанию all.
func (s *Sessions) Segment(adminID int64) string {
	var segment string
	found, err := s.cache.Get(segmentKey(adminID), &segment)
	if err != nil || !found || segment == "" {
		return "all"
	}
	return segment
}

// SetSegment запоминает выбранный сегмент рассылки.
func (s *Sessions) SetSegment(adminID int64, segment string) error {
	return s.cache.Set(segmentKey(adminID), segment, sessionTTL)
}
