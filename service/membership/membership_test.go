package membership

import (
	"net"
	"testing"

	"github.com/hashicorp/serf/serf"
	"github.com/stretchr/testify/require"
)

func TestMember_Sessions(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		expected int
	}{
		{"fresh member", NewMember("node-1", "127.0.0.1", 5678).Tags, 0},
		{"published", map[string]string{SessionsTag: "12"}, 12},
		{"missing", map[string]string{}, -1},
		{"garbage", map[string]string{SessionsTag: "many"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := &Member{Name: "node", Tags: tt.tags}
			require.Equal(t, tt.expected, member.Sessions())
		})
	}
}

func TestFromSerf(t *testing.T) {
	tags := map[string]string{SessionsTag: "3"}
	member := fromSerf(serf.Member{
		Name: "node-2",
		Addr: net.ParseIP("10.0.0.2"),
		Port: 7946,
		Tags: tags,
	})

	require.Equal(t, "node-2", member.Name)
	require.Equal(t, "10.0.0.2", member.Addr)
	require.Equal(t, uint16(7946), member.Port)
	require.Equal(t, 3, member.Sessions())

	tags[SessionsTag] = "4"
	require.Equal(t, 3, member.Sessions(), "tags are copied")
}

func TestMembership_AddRemove(t *testing.T) {
	m := &Membership{members: make(map[string]*Member)}
	m.Add(NewMember("node-1", "127.0.0.1", 5678))
	m.Add(NewMember("node-2", "127.0.0.1", 5679))
	require.Len(t, m.Members(), 2)

	m.Remove("node-1")
	members := m.Members()
	require.Len(t, members, 1)
	require.Equal(t, "node-2", members[0].Name)
}

func TestMembership_EventHandler(t *testing.T) {
	m := &Membership{members: make(map[string]*Member), localMember: "node-1", events: make(chan serf.Event, 4)}
	m.Add(NewMember("node-1", "127.0.0.1", 5678))

	peer := func(name, sessions string) serf.Member {
		return serf.Member{Name: name, Addr: net.ParseIP("10.0.0.2"), Port: 7946, Tags: map[string]string{SessionsTag: sessions}}
	}
	m.events <- serf.MemberEvent{Type: serf.EventMemberJoin, Members: []serf.Member{peer("node-2", "1"), peer("node-1", "9")}}
	m.events <- serf.MemberEvent{Type: serf.EventMemberUpdate, Members: []serf.Member{peer("node-2", "7")}}
	m.events <- serf.MemberEvent{Type: serf.EventMemberJoin, Members: []serf.Member{peer("node-3", "2")}}
	m.events <- serf.MemberEvent{Type: serf.EventMemberFailed, Members: []serf.Member{peer("node-3", "2")}}
	close(m.events)
	m.eventHandler()

	sessions := make(map[string]int)
	for _, member := range m.Members() {
		sessions[member.Name] = member.Sessions()
	}
	require.Equal(t, map[string]int{"node-1": 0, "node-2": 7}, sessions)
}
