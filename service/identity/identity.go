package identity

type Service interface {
    Identify() Model
}

type ServiceProvider struct {
    name     string
    address  string
    port     uint16
    sessions func() int
}

// NewService describes the local node. sessions reports the number of live
// calculator sessions at the time of the call.
func NewService(name, address string, port uint16, sessions func() int) Service {
    return &ServiceProvider{
        name:     name,
        address:  address,
        port:     port,
        sessions: sessions,
    }
}

func (sl ServiceProvider) Identify() Model {
    return Model{
        Identity: sl.name,
        Address:  sl.address,
        Port:     sl.port,
        Sessions: sl.sessions(),
    }
}

type Model struct {
    Identity string `json:"identity"`
    Address  string `json:"address"`
    Port     uint16 `json:"port"`
    Sessions int    `json:"sessions"`
}
