// Package workspace defines the memoized selectors over workspace snapshots.
package workspace

import (
	"fmt"
	"sort"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/monitor"
	"github.com/guttosm/selectorcache/internal/selector"
	"github.com/guttosm/selectorcache/internal/store"
)

// Selector names, as registered with the monitor.
const (
	EnabledAgentsName        = "enabled_agents"
	OpenConversationsName    = "open_conversation_count"
	ActiveAgentName          = "active_agent"
	RecentConversationsName  = "recent_conversations"
	ConversationsByAgentName = "conversations_by_agent"
	AgentByIDName            = "agent_by_id"
)

// RecentLimit is the number of conversations returned by RecentConversations.
const RecentLimit = 5

type snapshot = *store.Snapshot

var noAgent = &store.Agent{ID: "", Name: "none"}

// Selectors groups the workspace caches.
type Selectors struct {
	EnabledAgents        *selector.FilterCache[snapshot, store.Agent]
	OpenConversations    *selector.CountCache[snapshot, store.Conversation]
	ActiveAgent          *selector.SimpleCache[snapshot, *store.Agent]
	RecentConversations  *selector.ArrayCache[snapshot, store.Conversation]
	ConversationsByAgent *selector.ParameterizedCache[snapshot, []store.Conversation]
	AgentByID            *selector.FindByIDCache[snapshot, store.Agent, string]
}

func agents(s snapshot) ([]store.Agent, error) {
	return s.Agents, nil
}

func conversations(s snapshot) ([]store.Conversation, error) {
	return s.Conversations, nil
}

// New builds the workspace selectors.
func New(cfg config.SelectorConfig) *Selectors {
	monitoring := cfg.EnableMonitoring

	return &Selectors{
		EnabledAgents: selector.NewFilterCache[snapshot, store.Agent](agents,
			func(a store.Agent, _ snapshot) bool { return a.Enabled },
			selector.Options[[]store.Agent]{
				Name:                        EnabledAgentsName,
				MaxCacheSize:                cfg.MaxCacheSize,
				EnablePerformanceMonitoring: monitoring,
			}),

		OpenConversations: selector.NewCountCache[snapshot, store.Conversation](conversations,
			func(snapshot) func(store.Conversation) bool {
				return func(c store.Conversation) bool { return !c.Archived }
			},
			selector.Options[int]{
				Name:                        OpenConversationsName,
				MaxCacheSize:                cfg.MaxCacheSize,
				EnablePerformanceMonitoring: monitoring,
			}),

		ActiveAgent: selector.NewSimpleCache[snapshot, *store.Agent](activeAgent, selector.Options[*store.Agent]{
			Name:                        ActiveAgentName,
			EqualityFn:                  sameAgent,
			FallbackValue:               &noAgent,
			MaxCacheSize:                cfg.MaxCacheSize,
			EnablePerformanceMonitoring: monitoring,
		}),

		RecentConversations: selector.NewArrayCache[snapshot, store.Conversation](recentConversations, selector.Options[[]store.Conversation]{
			Name:                        RecentConversationsName,
			EqualityFn:                  selector.DeepEqual[[]store.Conversation](),
			MaxCacheSize:                cfg.MaxCacheSize,
			EnablePerformanceMonitoring: monitoring,
		}),

		ConversationsByAgent: selector.NewParameterizedCache[snapshot, []store.Conversation](conversationsByAgent, selector.Options[[]store.Conversation]{
			Name:                        ConversationsByAgentName,
			EqualityFn:                  selector.ShallowSliceEqual[store.Conversation],
			MaxCacheSize:                cfg.ParameterizedMaxCacheSize,
			EnablePerformanceMonitoring: monitoring,
		}),

		AgentByID: selector.NewFindByIDCache[snapshot, store.Agent, string](agents,
			func(a store.Agent) string { return a.ID },
			selector.Options[store.Agent]{
				Name:                        AgentByIDName,
				MaxCacheSize:                cfg.ParameterizedMaxCacheSize,
				EnablePerformanceMonitoring: monitoring,
			}),
	}
}

// Register adds every selector to the monitor.
func (s *Selectors) Register(m *monitor.PerformanceMonitor) {
	for name, cache := range s.caches() {
		m.Register(name, cache)
	}
}

// Unregister removes every selector from the monitor.
func (s *Selectors) Unregister(m *monitor.PerformanceMonitor) {
	for name := range s.caches() {
		m.Unregister(name)
	}
}

func (s *Selectors) caches() map[string]selector.Introspectable {
	return map[string]selector.Introspectable{
		EnabledAgentsName:        s.EnabledAgents,
		OpenConversationsName:    s.OpenConversations,
		ActiveAgentName:          s.ActiveAgent,
		RecentConversationsName:  s.RecentConversations,
		ConversationsByAgentName: s.ConversationsByAgent,
		AgentByIDName:            s.AgentByID,
	}
}

// ClearAll drops the entries of every selector.
func (s *Selectors) ClearAll() {
	for _, cache := range s.caches() {
		cache.ClearCache()
	}
}

func activeAgent(s snapshot) (*store.Agent, error) {
	for i := range s.Agents {
		if s.Agents[i].ID == s.ActiveAgentID {
			a := s.Agents[i]
			return &a, nil
		}
	}
	return nil, nil
}

func sameAgent(a, b *store.Agent) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func recentConversations(s snapshot) ([]store.Conversation, error) {
	recent := make([]store.Conversation, 0, len(s.Conversations))
	for _, c := range s.Conversations {
		if !c.Archived {
			recent = append(recent, c)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return recent, nil
}

func conversationsByAgent(params ...any) (selector.Selector[snapshot, []store.Conversation], error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("%w: want 1 agent id, got %d", selector.ErrInvalidParameter, len(params))
	}
	agentID, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: agent id has type %T", selector.ErrInvalidParameter, params[0])
	}
	return func(s snapshot) ([]store.Conversation, error) {
		var out []store.Conversation
		for _, c := range s.Conversations {
			if c.AgentID == agentID {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return selector.EmptySlice[store.Conversation](), nil
		}
		return out, nil
	}, nil
}
