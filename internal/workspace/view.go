package workspace

import (
	"github.com/guttosm/selectorcache/internal/store"
)

// View is the dashboard projection of one snapshot.
type View struct {
	Version             uint64               `json:"version"`
	ActiveAgent         *store.Agent         `json:"active_agent"`
	EnabledAgents       []store.Agent        `json:"enabled_agents"`
	OpenConversations   int                  `json:"open_conversations"`
	RecentConversations []store.Conversation `json:"recent_conversations"`
}

// AgentView is the projection of one agent and its conversations.
type AgentView struct {
	Agent         store.Agent          `json:"agent"`
	Conversations []store.Conversation `json:"conversations"`
}

// View evaluates the dashboard selectors against snap.
func (s *Selectors) View(snap *store.Snapshot) (View, error) {
	active, err := s.ActiveAgent.Select(snap)
	if err != nil {
		return View{}, err
	}
	enabled, err := s.EnabledAgents.Select(snap)
	if err != nil {
		return View{}, err
	}
	open, err := s.OpenConversations.Select(snap)
	if err != nil {
		return View{}, err
	}
	recent, err := s.RecentConversations.Select(snap)
	if err != nil {
		return View{}, err
	}
	return View{
		Version:             snap.Version,
		ActiveAgent:         active,
		EnabledAgents:       enabled,
		OpenConversations:   open,
		RecentConversations: recent,
	}, nil
}

// Agent evaluates the per-agent selectors. found is false for an unknown id.
func (s *Selectors) Agent(snap *store.Snapshot, id string) (view AgentView, found bool, err error) {
	agent, found, err := s.AgentByID.Find(snap, id)
	if err != nil || !found {
		return AgentView{}, false, err
	}
	conversations, err := s.ConversationsByAgent.Select(snap, id)
	if err != nil {
		return AgentView{}, false, err
	}
	return AgentView{Agent: agent, Conversations: conversations}, true, nil
}
