package core

// delivery is a single send instruction produced by the planners below.
type delivery struct {
	client *Client
	event  *Event
}

// planBroadcast turns a member list into send instructions for the clients
// that are still registered and open.
func planBroadcast(members []string, clients map[string]*Client, event *Event) []delivery {
	out := make([]delivery, 0, len(members))
	for _, id := range members {
		c, ok := clients[id]
		if !ok || !c.Open() {
			continue
		}
		out = append(out, delivery{client: c, event: event})
	}
	return out
}

// planDirect addresses a single client.
func planDirect(c *Client, event *Event) []delivery {
	if c == nil || !c.Open() {
		return nil
	}
	return []delivery{{client: c, event: event}}
}
