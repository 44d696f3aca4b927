package service

import (
	"time"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/pkg/utils"
)

// VisitTransition is what one tab event did to the current visit.
type VisitTransition struct {
	Closed *model.Visit
	Opened *model.Visit
}

type IVisitService interface {
	OnTabFocused(tabID int, url string, now time.Time) VisitTransition
	OnTabNavigated(tabID int, url string, now time.Time) VisitTransition
	OnTabClosed(tabID int, now time.Time) VisitTransition
	// Stop closes the current visit and forgets the focused tab.
	Stop(now time.Time) VisitTransition
	Current() (model.Visit, bool)
	FocusedTab() (int, bool)
}

// visitService holds at most one open visit. Every transition closes the
// current visit before it opens another one.
type visitService struct {
	current    *model.Visit
	focusedTab int
	hasFocus   bool
}

func NewVisitService() IVisitService {
	return &visitService{}
}

func (s *visitService) OnTabFocused(tabID int, url string, now time.Time) VisitTransition {
	s.focusedTab = tabID
	s.hasFocus = true
	return s.switchTo(tabID, url, now)
}

func (s *visitService) OnTabNavigated(tabID int, url string, now time.Time) VisitTransition {
	if !s.hasFocus || tabID != s.focusedTab {
		return VisitTransition{}
	}
	return s.switchTo(tabID, url, now)
}

func (s *visitService) OnTabClosed(tabID int, now time.Time) VisitTransition {
	if !s.hasFocus || tabID != s.focusedTab {
		return VisitTransition{}
	}
	return s.Stop(now)
}

func (s *visitService) Stop(now time.Time) VisitTransition {
	s.hasFocus = false
	s.focusedTab = 0
	return VisitTransition{Closed: s.closeCurrent(now)}
}

func (s *visitService) Current() (model.Visit, bool) {
	if s.current == nil {
		return model.Visit{}, false
	}
	return *s.current, true
}

func (s *visitService) FocusedTab() (int, bool) {
	return s.focusedTab, s.hasFocus
}

func (s *visitService) switchTo(tabID int, url string, now time.Time) VisitTransition {
	t := VisitTransition{Closed: s.closeCurrent(now)}
	if !utils.IsTrackableURL(url) {
		return t
	}
	s.current = &model.Visit{
		Domain:    utils.ExtractDomain(url),
		URL:       url,
		TabID:     tabID,
		StartTime: now,
	}
	opened := *s.current
	t.Opened = &opened
	return t
}

func (s *visitService) closeCurrent(now time.Time) *model.Visit {
	if s.current == nil {
		return nil
	}
	closed := *s.current
	closed.Close(now)
	s.current = nil
	return &closed
}
