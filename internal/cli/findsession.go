package cli

import (
	"fmt"

	"github.com/clio-cli/clio/internal/discovery"
)

// findSession scans every project under root for a session whose ID
// matches id, returning the first match. Session IDs are UUIDs (or
// agent hashes for subagent files), unique within a log store in
// practice, so a linear scan is an acceptable cost for a one-off CLI
// lookup rather than requiring an index.
func findSession(root, id string) (discovery.Session, error) {
	projects, err := discovery.ListProjects(root)
	if err != nil {
		return discovery.Session{}, err
	}
	for _, p := range projects {
		sessions, err := discovery.ListSessions(p)
		if err != nil {
			continue
		}
		for _, s := range sessions {
			if s.ID == id {
				return s, nil
			}
		}
	}
	return discovery.Session{}, fmt.Errorf("session not found: %s", id)
}
