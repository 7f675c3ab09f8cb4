// Package memory implements the intelligent memory retrieval engine: an
// associative, clustered store of patient memories with relevance-ranked
// retrieval. The in-memory state is authoritative; persistence is best-effort.
package memory

import (
	"errors"
	"time"
)

// Type classifies a memory node.
type Type string

const (
	TypeEpisodic   Type = "episodic"
	TypeSemantic   Type = "semantic"
	TypeProcedural Type = "procedural"
)

// Emotion labels the emotional context a memory was stored with.
type Emotion string

const (
	EmotionVeryPositive Emotion = "very_positive"
	EmotionPositive     Emotion = "positive"
	EmotionNeutral      Emotion = "neutral"
	EmotionNegative     Emotion = "negative"
	EmotionVeryNegative Emotion = "very_negative"
	EmotionAnxious      Emotion = "anxious"
)

// Media references optional image/audio attached to a memory.
type Media struct {
	ImagePath string `json:"image_path,omitempty"`
	AudioPath string `json:"audio_path,omitempty"`
}

// HasAny reports whether the memory carries any media reference.
func (m Media) HasAny() bool { return m.ImagePath != "" || m.AudioPath != "" }

// Node is a single stored memory. Nodes are created by Store, mutated only by
// Retrieve (retrieval stats) and the typed Update, and never deleted except
// by an explicit bulk clear.
type Node struct {
	ID               string            `json:"id"`
	Timestamp        time.Time         `json:"timestamp"`
	Content          string            `json:"content"`
	MemoryType       Type              `json:"memory_type"`
	Tags             []string          `json:"tags"`
	Media            Media             `json:"associated_media"`
	EmotionalContext Emotion           `json:"emotional_context"`
	ImportanceScore  float64           `json:"importance_score"`
	RetrievalCount   int               `json:"retrieval_count"`
	LastAccessed     time.Time         `json:"last_accessed"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Edge is a weighted symmetric association between two memories. IDs are kept
// in canonical order so one record represents the unordered pair.
type Edge struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Strength float64 `json:"strength"`
}

// Cluster groups thematically related memories.
type Cluster struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MemberIDs    []string  `json:"member_ids"`
	CentralTheme string    `json:"central_theme"`
	Created      time.Time `json:"created"`
	Strength     float64   `json:"strength"`
}

// StoreInput carries everything needed to store a new memory.
type StoreInput struct {
	Content          string
	MemoryType       Type
	Media            Media
	EmotionalContext Emotion
	Tags             []string
	Metadata         map[string]string

	// ImportanceHint, when set, bypasses importance analysis (still clamped).
	ImportanceHint *float64
}

// Update lists exactly the mutable attributes of a node. Nil fields are
// left untouched.
type Update struct {
	Tags             *[]string
	EmotionalContext *Emotion
	ImportanceScore  *float64
	Media            *Media
}

// TimeFrame narrows retrieval by age.
type TimeFrame string

const (
	TimeFrameAny       TimeFrame = "any"
	TimeFrameRecent    TimeFrame = "recent"
	TimeFrameOld       TimeFrame = "old"
	TimeFrameChildhood TimeFrame = "childhood"
)

// MediaPreference narrows retrieval by attached media kind.
type MediaPreference string

const (
	MediaAny   MediaPreference = "any"
	MediaImage MediaPreference = "image"
	MediaAudio MediaPreference = "audio"
)

// QueryContext is the structured retrieval filter derived from a free-text
// query, either by the generation service or by the deterministic fallback.
type QueryContext struct {
	Keywords         []string
	MemoryTypes      []Type
	EmotionalContext Emotion
	TimeFrame        TimeFrame
	MediaPreference  MediaPreference
}

// Snapshot is the serialized form exchanged with a Persister.
type Snapshot struct {
	Memories []Node    `json:"memories"`
	Edges    []Edge    `json:"edges"`
	Clusters []Cluster `json:"clusters"`
}

var (
	ErrNotFound     = errors.New("memory not found")
	ErrEmptyContent = errors.New("memory content is empty")
)

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN guard
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
