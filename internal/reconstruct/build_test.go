package reconstruct

import (
	"encoding/json"
	"testing"

	"github.com/clio-cli/clio/internal/model"
)

func mustEntry(t *testing.T, line string) *model.Entry {
	t.Helper()
	var e model.Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	return &e
}

func TestBuildSingleUserMessage(t *testing.T) {
	e := mustEntry(t, `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","parentUuid":null,"sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/tmp","message":{"id":"m1","role":"user","content":"hello"}}`)

	c := Build([]*model.Entry{e})
	mt := c.MainThread()
	if len(mt) != 1 || c.Entry(mt[0]).UUID != e.UUID {
		t.Fatalf("main thread = %v, want [%s]", mt, e.UUID)
	}
}

func TestBuildCompactionBridge(t *testing.T) {
	u1 := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hi"}}`)
	a1 := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/","message":{"id":"m2","role":"assistant","content":[{"type":"text","text":"hey"}]}}`)
	summary := mustEntry(t, `{"type":"summary","uuid":"00000000-0000-0000-0000-000000000003","sessionId":"s1","timestamp":"2026-01-01T00:00:02Z","cwd":"/","summary":"recap","leafUuid":"00000000-0000-0000-0000-000000000002"}`)
	u2 := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000004","parentUuid":null,"logicalParentUuid":"00000000-0000-0000-0000-000000000002","sessionId":"s1","timestamp":"2026-01-01T00:00:03Z","cwd":"/","message":{"id":"m4","role":"user","content":"continue"}}`)

	c := Build([]*model.Entry{u1, a1, summary, u2})

	if len(c.Orphans()) != 0 {
		t.Errorf("orphans = %v, want none", c.Orphans())
	}
	parentIdx, ok := c.Parent(c.IndexOf(u2.UUID))
	if !ok || c.Entry(parentIdx).UUID != a1.UUID {
		t.Fatalf("u2's resolved parent = %v, ok=%v, want a1", parentIdx, ok)
	}

	mt := c.MainThread()
	if len(mt) != 3 {
		t.Fatalf("main thread length = %d, want 3 (u1, a1, u2 -- summary is not parented into the chain)", len(mt))
	}
	got := []string{c.Entry(mt[0]).UUID, c.Entry(mt[1]).UUID, c.Entry(mt[2]).UUID}
	want := []string{u1.UUID, a1.UUID, u2.UUID}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("main thread[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildToolRoundTrip(t *testing.T) {
	a1 := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"assistant","content":[{"type":"tool_use","id":"toolu_A","name":"Read","input":{"path":"/x"}}]}}`)
	u1 := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/","message":{"id":"m2","role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_A","content":"file contents","is_error":false}]}}`)

	c := Build([]*model.Entry{a1, u1})
	pairs := c.ToolPairs()
	if len(pairs) != 1 {
		t.Fatalf("tool pairs = %d, want 1", len(pairs))
	}
	if pairs[0].Use.Block.ID != "toolu_A" {
		t.Errorf("pair use id = %q", pairs[0].Use.Block.ID)
	}
	if pairs[0].Result == nil {
		t.Fatalf("pair result = nil, want matched")
	}
	if pairs[0].Result.Block.IsError != model.ErrorFalse {
		t.Errorf("result is_error = %v, want ErrorFalse (explicit)", pairs[0].Result.Block.IsError)
	}
	if len(c.UnmatchedToolUse()) != 0 {
		t.Errorf("unmatched = %v, want none", c.UnmatchedToolUse())
	}
}

func TestBuildSidechainExcludedFromMainThread(t *testing.T) {
	u1 := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hi"}}`)
	branch := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/","isSidechain":true,"message":{"id":"m2","role":"user","content":"aborted branch"}}`)

	c := Build([]*model.Entry{u1, branch})
	for _, idx := range c.MainThread() {
		if c.Entry(idx).UUID == branch.UUID {
			t.Fatalf("sidechain entry %s appeared on main thread", branch.UUID)
		}
	}
	b := c.Branch(branch.UUID)
	if len(b) != 1 || c.Entry(b[0]).UUID != branch.UUID {
		t.Errorf("Branch() = %v, want [%s]", b, branch.UUID)
	}
}

func TestBuildDuplicateUUIDDropsLater(t *testing.T) {
	first := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"first"}}`)
	dup := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/","message":{"id":"m2","role":"user","content":"second"}}`)

	c := Build([]*model.Entry{first, dup})
	if c.Len() != 1 {
		t.Fatalf("arena length = %d, want 1", c.Len())
	}
	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != IntegrityDuplicateUUID {
		t.Errorf("diagnostics = %v, want one IntegrityDuplicateUUID", diags)
	}
}

func TestBuildCycleDropsClosingEdge(t *testing.T) {
	a := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","parentUuid":"00000000-0000-0000-0000-000000000002","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/"}`)
	b := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/"}`)

	c := Build([]*model.Entry{a, b})
	diags := c.Diagnostics()
	found := false
	for _, d := range diags {
		if d.Kind == IntegrityCycleInParents {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want an IntegrityCycleInParents entry", diags)
	}
}

func TestGroupsConcatenateInFileOrder(t *testing.T) {
	chunk1 := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"assistant","content":[{"type":"text","text":"a"}]}}`)
	chunk2 := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:01Z","cwd":"/","message":{"id":"m1","role":"assistant","content":[{"type":"text","text":"b"}]}}`)

	c := Build([]*model.Entry{chunk1, chunk2})
	groups := c.Groups()
	if len(groups) != 1 || len(groups[0].EntryIdxs) != 2 {
		t.Fatalf("groups = %+v, want one group of 2", groups)
	}
}
