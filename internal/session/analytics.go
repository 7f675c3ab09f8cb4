package session

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/munes-ai/munes/internal/dialog"
)

// Analytics aggregates outcomes across completed sessions, for the
// reporting consumer.
type Analytics struct {
	WindowDays          int     `json:"window_days"`
	Sessions            int     `json:"sessions"`
	TotalTurns          int     `json:"total_turns"`
	AvgDurationMinutes  float64 `json:"avg_duration_minutes"`
	AvgPositivity       float64 `json:"avg_positivity"`
	AvgEngagement       float64 `json:"avg_engagement"`
	EngagementStdDev    float64 `json:"engagement_std_dev"`
	CrisisInterventions int     `json:"crisis_interventions"`
	GoalsAchieved       int     `json:"goals_achieved"`
}

// AnalyticsWindow aggregates over sessions that ended within the last
// `days` days; days <= 0 means the whole history.
func (m *Manager) AnalyticsWindow(days int) Analytics {
	m.mu.RLock()
	sessions := make([]*Session, len(m.history))
	copy(sessions, m.history)
	m.mu.RUnlock()

	cutoff := time.Time{}
	if days > 0 {
		cutoff = m.now().AddDate(0, 0, -days)
	}

	out := Analytics{WindowDays: days}
	var durations, positivity, engagement []float64
	for _, s := range sessions {
		if !cutoff.IsZero() && s.EndTime.Before(cutoff) {
			continue
		}
		p := progressOf(s, s.EndTime)
		out.Sessions++
		out.TotalTurns += len(s.Turns)
		out.GoalsAchieved += len(s.GoalsAchieved)
		durations = append(durations, p.SessionDurationMinutes)
		positivity = append(positivity, p.EmotionalPositivity)
		engagement = append(engagement, p.AverageEngagement)
		for _, st := range s.StatesVisited {
			if st == dialog.StateCrisisIntervention {
				out.CrisisInterventions++
				break
			}
		}
	}

	if len(durations) > 0 {
		out.AvgDurationMinutes = stat.Mean(durations, nil)
		out.AvgPositivity = stat.Mean(positivity, nil)
		out.AvgEngagement = stat.Mean(engagement, nil)
	}
	if len(engagement) > 1 {
		out.EngagementStdDev = stat.StdDev(engagement, nil)
	}
	return out
}
