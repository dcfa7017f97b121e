package store

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Seed returns a small workspace used by the demo binary.
func Seed(now time.Time) Snapshot {
	agents := []Agent{
		{ID: "a1", Name: "Researcher", Model: "large", Enabled: true},
		{ID: "a2", Name: "Coder", Model: "large", Enabled: true},
		{ID: "a3", Name: "Translator", Model: "small", Enabled: false},
		{ID: "a4", Name: "Planner", Model: "medium", Enabled: true},
	}
	var conversations []Conversation
	for i := 0; i < 12; i++ {
		agent := agents[i%len(agents)]
		conversations = append(conversations, Conversation{
			ID:           fmt.Sprintf("c%d", i+1),
			AgentID:      agent.ID,
			Title:        fmt.Sprintf("%s session %d", agent.Name, i/len(agents)+1),
			Archived:     i%5 == 0,
			MessageCount: 2 + i,
			UpdatedAt:    now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return Snapshot{Agents: agents, Conversations: conversations, ActiveAgentID: "a1"}
}

// Mutate applies one random change, mimicking user activity.
func Mutate(next *Snapshot, rng *rand.Rand, now time.Time) {
	switch rng.IntN(4) {
	case 0:
		if len(next.Conversations) > 0 {
			i := rng.IntN(len(next.Conversations))
			next.Conversations[i].MessageCount++
			next.Conversations[i].UpdatedAt = now
		}
	case 1:
		if len(next.Conversations) > 0 {
			i := rng.IntN(len(next.Conversations))
			next.Conversations[i].Archived = !next.Conversations[i].Archived
		}
	case 2:
		if len(next.Agents) > 0 {
			next.ActiveAgentID = next.Agents[rng.IntN(len(next.Agents))].ID
		}
	default:
		// Touch nothing reachable by selectors: only the version changes.
	}
}
