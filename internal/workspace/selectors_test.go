package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/monitor"
	"github.com/guttosm/selectorcache/internal/store"
)

var testNow = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func newTestSelectors() *Selectors {
	return New(config.SelectorConfig{MaxCacheSize: 1, ParameterizedMaxCacheSize: 10, EnableMonitoring: true})
}

func TestView_DerivesDashboard(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()

	v, err := sel.View(st.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), v.Version)
	require.NotNil(t, v.ActiveAgent)
	assert.Equal(t, "a1", v.ActiveAgent.ID)
	assert.Len(t, v.EnabledAgents, 3)
	// Seed archives conversations 1, 6 and 11.
	assert.Equal(t, 9, v.OpenConversations)
	require.Len(t, v.RecentConversations, RecentLimit)
	assert.Equal(t, "c2", v.RecentConversations[0].ID)
	for _, c := range v.RecentConversations {
		assert.False(t, c.Archived)
	}
}

func TestView_SameSnapshotIsMemoized(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()
	snap := st.Snapshot()

	v1, err := sel.View(snap)
	require.NoError(t, err)
	v2, err := sel.View(snap)
	require.NoError(t, err)

	assert.Same(t, v1.ActiveAgent, v2.ActiveAgent)
	assert.Same(t, &v1.EnabledAgents[0], &v2.EnabledAgents[0])
	assert.Equal(t, int64(1), sel.EnabledAgents.Metrics().CacheHits)
	assert.Equal(t, int64(1), sel.RecentConversations.Metrics().CacheHits)
}

func TestView_UnrelatedChangeKeepsReferences(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()

	v1, err := sel.View(st.Snapshot())
	require.NoError(t, err)

	// Only the version changes.
	next := st.Update(func(*store.Snapshot) {})
	v2, err := sel.View(next)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), v2.Version)
	assert.Same(t, v1.ActiveAgent, v2.ActiveAgent)
	assert.Same(t, &v1.EnabledAgents[0], &v2.EnabledAgents[0])
	assert.Same(t, &v1.RecentConversations[0], &v2.RecentConversations[0])
}

func TestView_RelevantChangeProducesNewResult(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()

	v1, err := sel.View(st.Snapshot())
	require.NoError(t, err)

	next := st.Update(func(s *store.Snapshot) {
		s.ActiveAgentID = "a2"
		s.Conversations[11].UpdatedAt = testNow.Add(time.Minute)
	})
	v2, err := sel.View(next)
	require.NoError(t, err)

	assert.NotSame(t, v1.ActiveAgent, v2.ActiveAgent)
	assert.Equal(t, "a2", v2.ActiveAgent.ID)
	assert.Equal(t, "c12", v2.RecentConversations[0].ID)
}

func TestView_UnknownActiveAgentFallsBack(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()

	snap := st.Update(func(s *store.Snapshot) { s.ActiveAgentID = "missing" })
	v, err := sel.View(snap)
	require.NoError(t, err)

	require.NotNil(t, v.ActiveAgent)
	assert.Equal(t, "none", v.ActiveAgent.Name)
}

func TestAgent(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()
	snap := st.Snapshot()

	tests := []struct {
		name      string
		id        string
		wantFound bool
		wantConvs int
	}{
		{name: "known agent", id: "a1", wantFound: true, wantConvs: 3},
		{name: "disabled agent", id: "a3", wantFound: true, wantConvs: 3},
		{name: "unknown agent", id: "zz", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, found, err := sel.Agent(snap, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.id, v.Agent.ID)
				assert.Len(t, v.Conversations, tt.wantConvs)
			}
		})
	}

	assert.Equal(t, 3, sel.AgentByID.CacheSize(), "misses are cached per id too")
	assert.Equal(t, 2, sel.ConversationsByAgent.CacheSize())
}

func TestAgent_EmptyConversationsAreCanonical(t *testing.T) {
	st := store.New(store.Seed(testNow))
	sel := newTestSelectors()

	snap := st.Update(func(s *store.Snapshot) {
		s.Agents = append(s.Agents, store.Agent{ID: "a5", Name: "Idle", Enabled: true})
	})
	v, found, err := sel.Agent(snap, "a5")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotNil(t, v.Conversations)
	assert.Empty(t, v.Conversations)
}

func TestConversationsByAgent_RejectsBadParameters(t *testing.T) {
	sel := newTestSelectors()
	snap := store.New(store.Seed(testNow)).Snapshot()

	_, err := sel.ConversationsByAgent.Select(snap, 42)
	assert.Error(t, err)
	_, err = sel.ConversationsByAgent.Select(snap)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	sel := newTestSelectors()
	mon := monitor.New(monitor.DefaultConfig())

	sel.Register(mon)
	assert.ElementsMatch(t, []string{
		EnabledAgentsName, OpenConversationsName, ActiveAgentName,
		RecentConversationsName, ConversationsByAgentName, AgentByIDName,
	}, mon.Registered())

	_, err := sel.View(store.New(store.Seed(testNow)).Snapshot())
	require.NoError(t, err)
	snap := mon.Collect()
	assert.Equal(t, int64(4), snap.TotalCalls)
	assert.Empty(t, snap.Failures)

	sel.Unregister(mon)
	assert.Empty(t, mon.Registered())
}

func TestClearAll(t *testing.T) {
	sel := newTestSelectors()
	snap := store.New(store.Seed(testNow)).Snapshot()

	_, err := sel.View(snap)
	require.NoError(t, err)
	_, _, err = sel.Agent(snap, "a1")
	require.NoError(t, err)

	sel.ClearAll()
	for name, cache := range sel.caches() {
		assert.Zero(t, cache.CacheSize(), name)
	}
}
