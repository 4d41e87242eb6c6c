package question

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is a closed enum stored as its string name.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var difficulties = map[string]Difficulty{
	"easy":   DifficultyEasy,
	"medium": DifficultyMedium,
	"hard":   DifficultyHard,
}

// ParseDifficulty matches a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	d, ok := difficulties[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Topic is a closed enum stored as its string name.
type Topic string

const (
	TopicArray              Topic = "Array"
	TopicString             Topic = "String"
	TopicLinkedList         Topic = "LinkedList"
	TopicStack              Topic = "Stack"
	TopicQueue              Topic = "Queue"
	TopicTree               Topic = "Tree"
	TopicGraph              Topic = "Graph"
	TopicHeap               Topic = "Heap"
	TopicMath               Topic = "Math"
	TopicDynamicProgramming Topic = "DynamicProgramming"
	TopicGreedy             Topic = "Greedy"
	TopicBitManipulation    Topic = "BitManipulation"
)

var topics = func() map[string]Topic {
	all := []Topic{
		TopicArray, TopicString, TopicLinkedList, TopicStack, TopicQueue,
		TopicTree, TopicGraph, TopicHeap, TopicMath, TopicDynamicProgramming,
		TopicGreedy, TopicBitManipulation,
	}
	m := make(map[string]Topic, len(all))
	for _, t := range all {
		m[strings.ToLower(string(t))] = t
	}
	return m
}()

// ParseTopic matches a topic name case-insensitively.
func ParseTopic(s string) (Topic, bool) {
	t, ok := topics[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Question is a catalog row. Titles are unique across the store.
type Question struct {
	ID          uuid.UUID
	Title       string
	Description string
	Difficulty  Difficulty
	Topic       Topic
	Hint        string
}

// View is the read projection delivered to clients: question fields plus the
// per-caller solved overlay. Computed per request, never persisted.
type View struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Topic       string     `json:"topic"`
	Hint        string     `json:"hint,omitempty"`
	Solved      bool       `json:"solved"`
	SolvedAt    *time.Time `json:"solvedAt,omitempty"`
}

// CreateInput carries a new question as submitted by a client.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Topic       string `json:"topic"`
	Hint        string `json:"hint"`
}

// ListParams are the raw list arguments after boundary validation.
type ListParams struct {
	Column     string
	Query      string
	SortBy     string
	Ascending  bool
	PageNumber int
	PageSize   int
}

// SolvedFilter partitions questions by membership in the caller's solved set.
type SolvedFilter int

const (
	SolvedAny SolvedFilter = iota
	SolvedOnly
	UnsolvedOnly
)

// ListQuery is the filter specification handed to the storage adapter. Zero
// values mean "no constraint"; SolvedIDs accompanies a non-Any Solved filter.
type ListQuery struct {
	TitleContains string
	Difficulty    Difficulty
	Topic         Topic
	Solved        SolvedFilter
	SolvedIDs     []uuid.UUID
	SortByTitle   bool
	Ascending     bool
	Offset        int
	Limit         int
}

// TopicProgress is the per-topic solved/total aggregate.
type TopicProgress struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}
