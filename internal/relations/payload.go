package relations

// Position places a connected entry relative to its neighbours.
type Position struct {
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
	Start  bool   `json:"start,omitempty" yaml:"start,omitempty"`
	End    bool   `json:"end,omitempty" yaml:"end,omitempty"`
}

// Connection is an entry to connect. Single relations carry no position.
type Connection struct {
	ID       string    `json:"id" yaml:"id"`
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// Disconnection is an entry to disconnect.
type Disconnection struct {
	ID string `json:"id" yaml:"id"`
}

// Payload is the change of a relation field since it was loaded.
type Payload struct {
	Connect    []Connection    `json:"connect" yaml:"connect"`
	Disconnect []Disconnection `json:"disconnect" yaml:"disconnect"`
}

// Payload returns the connect and disconnect lists that turn the loaded
// entries into the current ones. Connections are listed in list order and
// each is placed after the entry before it, so applying them in order
// reproduces the list.
func (f *Field) Payload() Payload {
	p := Payload{Connect: []Connection{}, Disconnect: []Disconnection{}}

	current := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		current[it.ID] = true
	}
	loaded := make(map[string]bool, len(f.loaded))
	var kept []string
	for _, it := range f.loaded {
		loaded[it.ID] = true
		if current[it.ID] {
			kept = append(kept, it.ID)
		} else {
			p.Disconnect = append(p.Disconnect, Disconnection{ID: it.ID})
		}
	}

	if f.IsSingle() {
		for _, it := range f.Items {
			if !loaded[it.ID] {
				p.Connect = append(p.Connect, Connection{ID: it.ID})
			}
		}
		return p
	}

	before := make(map[string]string, len(kept))
	for i, id := range kept {
		if i > 0 {
			before[id] = kept[i-1]
		}
	}
	for i, it := range f.Items {
		prev := ""
		if i > 0 {
			prev = f.Items[i-1].ID
		}
		if loaded[it.ID] && before[it.ID] == prev {
			continue
		}
		pos := &Position{After: prev}
		if prev == "" {
			pos = &Position{Start: true}
		}
		p.Connect = append(p.Connect, Connection{ID: it.ID, Position: pos})
	}
	return p
}
