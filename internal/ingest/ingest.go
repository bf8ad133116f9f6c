// Package ingest wires discovery, parser, and reconstruct into a batch
// pipeline over many sessions, using a bounded worker pool (spec §5:
// "Batch operations ... are parallelized with a bounded worker pool,
// one session per task ... default = CPU count").
package ingest

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/clio-cli/clio/internal/clioerr"
	"github.com/clio-cli/clio/internal/discovery"
	"github.com/clio-cli/clio/internal/parser"
	"github.com/clio-cli/clio/internal/reconstruct"
	"github.com/clio-cli/clio/internal/store"
)

// SessionResult is one session's ingestion outcome.
type SessionResult struct {
	Session discovery.Session
	Conv    *reconstruct.Conversation
	Stats   parser.Stats
	Err     error
}

// Summary aggregates a batch ingestion run.
type Summary struct {
	Results []SessionResult
	Failed  int
}

// workItem pairs a session with the mode its file should be parsed in.
type workItem struct {
	session discovery.Session
	mode    parser.Mode
}

// ParseAndReconstruct runs discovery->parser->reconstruct for every
// session in sessions, bounded by workers concurrent tasks (0 means
// runtime.NumCPU(), per spec §5's default). Within a session, parsing
// and reconstruction stay single-threaded (spec §5's ordering
// guarantee); only the across-session fan-out is parallel. Subagent
// sessions are stitched into their parent's Conversation after every
// task completes, since stitching needs both conversations built.
func ParseAndReconstruct(ctx context.Context, sessions []discovery.Session, mode parser.Mode, workers int) Summary {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan workItem, len(sessions))
	for _, s := range sessions {
		items <- workItem{session: s, mode: mode}
	}
	close(items)

	results := make([]SessionResult, len(sessions))
	resultIdx := make(map[string]int, len(sessions))
	for i, s := range sessions {
		resultIdx[s.ID] = i
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range items {
				select {
				case <-ctx.Done():
					mu.Lock()
					results[resultIdx[item.session.ID]] = SessionResult{
						Session: item.session,
						Err:     clioerr.Cancelled(),
					}
					mu.Unlock()
					continue
				default:
				}

				r := parseOne(item)
				mu.Lock()
				results[resultIdx[item.session.ID]] = r
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	summary := attachSubagents(sessions, results)
	return summary
}

func parseOne(item workItem) SessionResult {
	f, err := os.Open(item.session.Path)
	if err != nil {
		return SessionResult{Session: item.session, Err: clioerr.Io(item.session.Path, err)}
	}
	defer f.Close()

	p := parser.New(f, item.mode, "")
	entries, stats := parser.Collect(p)
	conv := reconstruct.Build(entries)
	return SessionResult{Session: item.session, Conv: conv, Stats: stats}
}

// attachSubagents resolves each subagent session's parent (spec §4.1)
// and folds its tool pairings into the parent's unmatched tool_use
// list (spec §4.3's cross-session tool-result stitching).
func attachSubagents(sessions []discovery.Session, results []SessionResult) Summary {
	parents := discovery.ResolveSubagentParents(sessions)

	byID := make(map[string]*SessionResult, len(results))
	for i := range results {
		byID[results[i].Session.ID] = &results[i]
	}

	failed := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			continue
		}
		if !r.Session.IsSubagent || r.Conv == nil {
			continue
		}
		parentID, ok := parents[r.Session.AgentHash]
		if !ok {
			continue
		}
		parent, ok := byID[parentID]
		if !ok || parent.Conv == nil {
			continue
		}
		parent.Conv.AttachSubagent(r.Session.AgentHash, r.Conv)
	}

	return Summary{Results: results, Failed: failed}
}

// WriteAll projects every successfully reconstructed session into st,
// skipping failed sessions (already surfaced via Summary.Results).
func WriteAll(st *store.Store, projects map[string]discovery.Project, summary Summary) error {
	for _, r := range summary.Results {
		if r.Err != nil || r.Conv == nil {
			continue
		}
		meta := store.SessionMeta{
			SessionID:  r.Session.ID,
			IsSubagent: r.Session.IsSubagent,
			AgentHash:  r.Session.AgentHash,
			FileSize:   r.Session.Size,
		}
		if proj, ok := projects[r.Session.ProjectID]; ok {
			meta.ProjectPath = proj.Path
		}
		if err := st.WriteSession(meta, r.Conv); err != nil {
			return fmt.Errorf("write session %s: %w", r.Session.ID, err)
		}
		if err := st.WriteAllFileBackups(r.Session.ID, r.Conv); err != nil {
			return fmt.Errorf("write file backups for %s: %w", r.Session.ID, err)
		}
	}
	return nil
}
