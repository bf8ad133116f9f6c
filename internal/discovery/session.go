package discovery

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Session is one discovered session log file.
type Session struct {
	// ID is the session UUID (the file's basename without extension),
	// or the agent hash for subagent files.
	ID string
	// Path is the absolute path to the .jsonl file.
	Path string
	// ProjectID is the encoded project directory name the session lives under.
	ProjectID string
	// IsSubagent reports whether the filename matches the agent-<hash> pattern.
	IsSubagent bool
	// AgentHash is the short hash extracted from a subagent filename.
	AgentHash string
	ModTime   time.Time
	Size      int64
}

var subagentFilePattern = regexp.MustCompile(`^agent-([a-zA-Z0-9]+).*\.jsonl$`)

// ListSessions enumerates .jsonl files directly within a project directory.
func ListSessions(project Project) ([]Session, error) {
	entries, err := os.ReadDir(project.Dir)
	if err != nil {
		return nil, wrapReadDirErr(project.Dir, err)
	}

	sessions := make([]Session, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".jsonl") {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		s := Session{
			Path:      filepath.Join(project.Dir, ent.Name()),
			ProjectID: project.ID,
			ModTime:   info.ModTime(),
			Size:      info.Size(),
		}
		if m := subagentFilePattern.FindStringSubmatch(ent.Name()); m != nil {
			s.IsSubagent = true
			s.AgentHash = m[1]
			s.ID = m[1]
		} else {
			s.ID = strings.TrimSuffix(ent.Name(), ".jsonl")
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ModTime.Before(sessions[j].ModTime) })
	return sessions, nil
}

// ActivityState classifies how recently a session file was written to,
// distinguishing three degrees of recency (supplementing spec.md's
// possibly/recently-active framing with the reference implementation's
// three-way SessionState).
type ActivityState int

const (
	Inactive ActivityState = iota
	RecentlyActive
	PossiblyActive
)

func (s ActivityState) String() string {
	switch s {
	case PossiblyActive:
		return "possibly active"
	case RecentlyActive:
		return "recently active"
	default:
		return "inactive"
	}
}

// IsActive reports whether the state indicates the writer may still be appending.
func (s ActivityState) IsActive() bool {
	return s == PossiblyActive || s == RecentlyActive
}

const (
	possiblyActiveThreshold = 5 * time.Second
	recentlyActiveThreshold = 60 * time.Second
)

// DetectActivity classifies a session's activity state from its last
// modification time relative to now.
func DetectActivity(modTime, now time.Time) ActivityState {
	age := now.Sub(modTime)
	switch {
	case age < 0:
		return PossiblyActive
	case age <= possiblyActiveThreshold:
		return PossiblyActive
	case age <= recentlyActiveThreshold:
		return RecentlyActive
	default:
		return Inactive
	}
}

// subagentLineHead is the minimal shape discovery needs to resolve a
// subagent file's parent without depending on the full entry model.
type subagentLineHead struct {
	AgentID   string `json:"agentId"`
	Timestamp string `json:"timestamp"`
}

// ResolveSubagentParents maps each subagent session's AgentHash to the
// session ID of its parent, found by scanning sibling non-subagent
// sessions for the earliest entry whose agentId matches, with ties
// broken by earliest timestamp (spec §4.1).
func ResolveSubagentParents(sessions []Session) map[string]string {
	parents := make(map[string]string)

	var candidates []Session
	subagentHashes := make(map[string]bool)
	for _, s := range sessions {
		if s.IsSubagent {
			subagentHashes[s.AgentHash] = true
		} else {
			candidates = append(candidates, s)
		}
	}
	if len(subagentHashes) == 0 {
		return parents
	}

	type match struct {
		sessionID string
		timestamp string
	}
	best := make(map[string]match)

	for _, s := range candidates {
		scanForAgentIDs(s.Path, subagentHashes, func(agentID, timestamp string) {
			cur, ok := best[agentID]
			if !ok || timestamp < cur.timestamp {
				best[agentID] = match{sessionID: s.ID, timestamp: timestamp}
			}
		})
	}

	for hash, m := range best {
		parents[hash] = m.sessionID
	}
	return parents
}

func scanForAgentIDs(path string, wanted map[string]bool, record func(agentID, timestamp string)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var head subagentLineHead
		if err := json.Unmarshal(line, &head); err != nil {
			continue
		}
		if head.AgentID != "" && wanted[head.AgentID] {
			record(head.AgentID, head.Timestamp)
		}
	}
}
