package membership

import (
    "fmt"
    "github.com/hashicorp/serf/serf"
    "log/slog"
    "maps"
    "net"
    "slices"
    "strconv"
    "sync"
)

// SessionsTag is the serf tag through which each node advertises how many
// calculator sessions it currently hosts.
const SessionsTag = "sessions"

type Membership struct {
    lock        sync.RWMutex
    members     map[string]*Member
    joinAddrs   []string
    localMember string
    serf        *serf.Serf
    events      chan serf.Event
}

func NewService(member *Member, joinAddrs []string) (*Membership, error) {
    m := &Membership{
        members:   make(map[string]*Member),
        joinAddrs: joinAddrs,
    }
    m.members[member.Name] = member
    m.localMember = member.Name

    if err := m.initialize(member); err != nil {
        return nil, err
    }
    return m, nil
}

func (m *Membership) Members() []*Member {
    m.lock.RLock()
    defer m.lock.RUnlock()
    return slices.Collect(maps.Values(m.members))
}

func (m *Membership) Add(member *Member) {
    m.lock.Lock()
    defer m.lock.Unlock()
    m.members[member.Name] = member
}

func (m *Membership) Remove(name string) {
    m.lock.Lock()
    defer m.lock.Unlock()
    delete(m.members, name)
}

// SetSessionCount publishes the local session count to the cluster.
func (m *Membership) SetSessionCount(count int) error {
    m.lock.Lock()
    local := m.members[m.localMember]
    tags := maps.Clone(local.Tags)
    if tags == nil {
        tags = make(map[string]string)
    }
    tags[SessionsTag] = strconv.Itoa(count)
    local.Tags = tags
    m.lock.Unlock()

    return m.serf.SetTags(tags)
}

// Leave gracefully leaves the cluster and stops gossiping.
func (m *Membership) Leave() error {
    if err := m.serf.Leave(); err != nil {
        return err
    }
    return m.serf.Shutdown()
}

type Member struct {
    Name string            `json:"name"`
    Addr string            `json:"addr"`
    Port uint16            `json:"port"`
    Tags map[string]string `json:"tags"`
}

func NewMember(name, addr string, port uint16) *Member {
    return &Member{
        Name: name,
        Addr: addr,
        Port: port,
        Tags: map[string]string{SessionsTag: "0"},
    }
}

// Sessions returns the advertised session count, or -1 if the member has not
// published one.
func (mb *Member) Sessions() int {
    n, err := strconv.Atoi(mb.Tags[SessionsTag])
    if err != nil {
        return -1
    }
    return n
}

func fromSerf(sm serf.Member) *Member {
    return &Member{
        Name: sm.Name,
        Addr: sm.Addr.String(),
        Port: sm.Port,
        Tags: maps.Clone(sm.Tags),
    }
}

func (m *Membership) eventHandler() {
    for e := range m.events {
        switch e.EventType() {
        case serf.EventMemberJoin, serf.EventMemberUpdate:
            for _, sm := range e.(serf.MemberEvent).Members {
                if m.localMember == sm.Name {
                    continue
                }
                member := fromSerf(sm)
                slog.Info("Cluster member updated", "local", m.localMember, "member", sm.Name, "event", e.EventType().String(), "sessions", member.Sessions())
                m.Add(member)
            }
        case serf.EventMemberLeave, serf.EventMemberFailed:
            for _, sm := range e.(serf.MemberEvent).Members {
                if m.localMember == sm.Name {
                    continue
                }
                slog.Info("Cluster member left", "local", m.localMember, "member", sm.Name, "event", e.EventType().String())
                m.Remove(sm.Name)
            }
        }
    }
}

func (m *Membership) initialize(member *Member) error {
    addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", member.Addr, member.Port))
    if err != nil {
        return err
    }

    m.events = make(chan serf.Event)
    config := serf.DefaultConfig()
    config.Init()
    config.MemberlistConfig.BindAddr = addr.IP.String()
    config.MemberlistConfig.BindPort = addr.Port
    config.EventCh = m.events
    config.Tags = maps.Clone(member.Tags)
    config.NodeName = member.Name
    m.serf, err = serf.Create(config)
    if err != nil {
        return err
    }

    go m.eventHandler()
    if len(m.joinAddrs) > 0 {
        _, err := m.serf.Join(m.joinAddrs, true)
        if err != nil {
            return err
        }
    }
    return nil
}
