package hierarchy

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/balkashynov/worktrack/internal/models"
)

func ptr(v int64) *int64 { return &v }

func container(id int64, parent *int64) Node {
	return Node{ID: id, ParentID: parent, ProjectID: ptr(1)}
}

func subtask(id int64, parent int64) Node {
	return Node{ID: id, ParentID: ptr(parent), ProjectID: ptr(1), IsSubtask: true}
}

func TestTriplesThreeLevels(t *testing.T) {
	nodes := []Node{
		container(10, nil),
		container(11, ptr(10)),
		subtask(12, 11),
	}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{{Ancestor1: 10, Ancestor2: 11, SubtaskID: 12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestTriplesDirectChildOfRootFallsBack(t *testing.T) {
	nodes := []Node{container(10, nil), subtask(12, 10)}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{{Ancestor1: 10, Ancestor2: 10, SubtaskID: 12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestTriplesAbsorbDeeperLevels(t *testing.T) {
	nodes := []Node{
		container(10, nil),
		container(11, ptr(10)),
		container(20, ptr(11)),
		container(21, ptr(20)),
		subtask(30, 21),
		subtask(31, 11),
	}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{
		{Ancestor1: 10, Ancestor2: 11, SubtaskID: 30},
		{Ancestor1: 10, Ancestor2: 11, SubtaskID: 31},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestTriplesSkipRowsWithoutSubtask(t *testing.T) {
	nodes := []Node{
		container(1, nil),
		container(2, ptr(1)),
		container(3, nil),
		subtask(4, 3),
		{ID: 5, IsSubtask: true}, // a root subtask has nothing above it
	}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{{Ancestor1: 3, Ancestor2: 3, SubtaskID: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestTriplesDedupeSubtaskWithChildren(t *testing.T) {
	// malformed: containers hanging below a subtask produce several rows through it
	nodes := []Node{
		container(1, nil),
		subtask(2, 1),
		container(3, ptr(2)),
		container(4, ptr(2)),
	}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{{Ancestor1: 1, Ancestor2: 1, SubtaskID: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenLevelCap(t *testing.T) {
	chain := []Node{container(1, nil)}
	for id := int64(2); id <= 6; id++ {
		chain = append(chain, container(id, ptr(id-1)))
	}

	if _, err := Flatten(chain, 3); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("Flatten(depth 6, cap 3) error = %v, want ErrTooDeep", err)
	}

	rows, err := Flatten(chain, 6)
	if err != nil {
		t.Fatalf("Flatten(depth 6, cap 6) error: %v", err)
	}
	want := []Row{{1, 2, 3, 4, 5, 6}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenKeepsShortRows(t *testing.T) {
	nodes := []Node{
		container(1, nil),
		container(2, ptr(1)),
		container(3, ptr(1)),
		container(4, ptr(3)),
		container(9, nil),
	}

	rows, err := Flatten(nodes, DefaultMaxLevels)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	want := []Row{{1, 2}, {1, 3, 4}, {9}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenIgnoresCycles(t *testing.T) {
	nodes := []Node{
		container(1, nil),
		subtask(2, 1),
		container(7, ptr(8)),
		container(8, ptr(7)),
		subtask(9, 8),
		container(5, ptr(5)),
	}

	got, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	want := []Triple{{Ancestor1: 1, Ancestor2: 1, SubtaskID: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerivePaths(t *testing.T) {
	nodes := []Node{
		container(10, nil),
		container(11, ptr(10)),
		subtask(12, 11),
		subtask(13, 10),
		container(20, ptr(99)), // dangling parent
		subtask(21, 20),
		subtask(22, 98), // parent missing entirely
		{ID: 30, ParentID: ptr(11), IsSubtask: true},
		container(40, ptr(41)),
		container(41, ptr(40)),
		subtask(42, 40),
	}

	got := DerivePaths(nodes)
	want := map[int64]Path{
		12: "/1/10>11>12.",
		13: "/1/10>13.",
		21: "/1/20>21.",
		30: "//10>11>30.",
		42: "/1/41>40>42.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DerivePaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestPathContainsAncestor(t *testing.T) {
	p := NewPath(ptr(1), []int64{10, 110, 12})
	if p != "/1/10>110>12." {
		t.Fatalf("NewPath() = %q", p)
	}

	tests := []struct {
		id   int64
		want bool
	}{
		{10, true},
		{110, true},
		{1, false},  // project segment
		{11, false}, // substring of 110
		{12, false}, // the subtask itself
		{0, false},
	}
	for _, tt := range tests {
		if got := p.ContainsAncestor(tt.id); got != tt.want {
			t.Errorf("ContainsAncestor(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPathParsing(t *testing.T) {
	p := Path("/7/1>2>3.")
	if diff := cmp.Diff([]int64{1, 2, 3}, p.Chain()); diff != "" {
		t.Errorf("Chain() mismatch (-want +got):\n%s", diff)
	}
	if seg := p.projectSegment(); seg != "7" {
		t.Errorf("projectSegment() = %q, want 7", seg)
	}
	if id, ok := p.SubtaskID(); !ok || id != 3 {
		t.Errorf("SubtaskID() = %d, %v", id, ok)
	}
	if pid := p.ProjectID(); pid == nil || *pid != 7 {
		t.Errorf("ProjectID() = %v, want 7", pid)
	}
	if pid := Path("//1>2.").ProjectID(); pid != nil {
		t.Errorf("ProjectID() of empty segment = %d, want nil", *pid)
	}

	for _, bad := range []Path{"", "1>2.", "/7/1>2", "/7/1>x.", "/7/."} {
		if chain := bad.Chain(); chain != nil {
			t.Errorf("Path(%q).Chain() = %v, want nil", bad, chain)
		}
	}
}

// randomForest builds an acyclic forest at least three container levels deep
func randomForest(r *rand.Rand) []Node {
	var nodes []Node
	var containers []int64
	next := int64(1)
	newID := func() int64 {
		id := next
		next += int64(1 + r.Intn(9)) // sparse ids exercise substring collisions
		return id
	}

	roots := 1 + r.Intn(3)
	for i := 0; i < roots; i++ {
		id := newID()
		nodes = append(nodes, Node{ID: id, ProjectID: ptr(int64(1 + i))})
		containers = append(containers, id)
	}
	// guaranteed spine of depth 3 under the first root
	parent := containers[0]
	for i := 0; i < 2; i++ {
		id := newID()
		nodes = append(nodes, Node{ID: id, ParentID: ptr(parent), ProjectID: ptr(1)})
		containers = append(containers, id)
		parent = id
	}
	extra := r.Intn(20)
	for i := 0; i < extra; i++ {
		id := newID()
		p := containers[r.Intn(len(containers))]
		nodes = append(nodes, Node{ID: id, ParentID: ptr(p), ProjectID: ptr(1)})
		containers = append(containers, id)
	}
	subs := 1 + r.Intn(15)
	for i := 0; i < subs; i++ {
		id := newID()
		p := containers[r.Intn(len(containers))]
		nodes = append(nodes, Node{ID: id, ParentID: ptr(p), ProjectID: ptr(1), IsSubtask: true})
	}

	r.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	return nodes
}

func TestFormulationsAgreeOnRandomForests(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		nodes := randomForest(r)

		triples, err := Triples(nodes)
		if err != nil {
			t.Fatalf("forest %d: Triples() error: %v", i, err)
		}
		paths := DerivePaths(nodes)

		subtasks := 0
		for _, n := range nodes {
			if n.IsSubtask {
				subtasks++
			}
		}
		if len(triples) != subtasks {
			t.Fatalf("forest %d: %d triples for %d subtasks", i, len(triples), subtasks)
		}
		if len(paths) != subtasks {
			t.Fatalf("forest %d: %d paths for %d subtasks", i, len(paths), subtasks)
		}

		for _, tr := range triples {
			p, ok := paths[tr.SubtaskID]
			if !ok {
				t.Fatalf("forest %d: subtask %d has a triple but no path", i, tr.SubtaskID)
			}
			fromPath, ok := TripleFromPath(p)
			if !ok || fromPath != tr {
				t.Fatalf("forest %d: path %q gives %+v, flatten gives %+v", i, p, fromPath, tr)
			}
			if !p.ContainsAncestor(tr.Ancestor1) || !p.ContainsAncestor(tr.Ancestor2) {
				t.Fatalf("forest %d: path %q does not contain its ancestors %+v", i, p, tr)
			}
		}
	}
}

func TestMaterializeOrdering(t *testing.T) {
	issues := []models.Issue{
		{ID: 5, ProjectID: ptr(2), ParentIssueID: ptr(1), IsSubtask: true},
		{ID: 1, ProjectID: ptr(2)},
		{ID: 3, ProjectID: ptr(1), ParentIssueID: ptr(2), IsSubtask: true},
		{ID: 2, ProjectID: ptr(1)},
		{ID: 4, ProjectID: ptr(1), ParentIssueID: ptr(2), IsSubtask: true},
		{ID: 6, ParentIssueID: ptr(77), IsSubtask: true},
	}

	rows := Materialize(issues)
	var ids []int64
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]int64{6, 3, 4, 5}, ids); diff != "" {
		t.Errorf("Materialize() order mismatch (-want +got):\n%s", diff)
	}
	if rows[0].Path != nil {
		t.Errorf("orphan subtask got path %q", *rows[0].Path)
	}
	if rows[1].Path == nil || *rows[1].Path != "/1/2>3." {
		t.Errorf("subtask 3 path = %v", rows[1].Path)
	}
}

func TestVerifyReportsDrift(t *testing.T) {
	issues := []models.Issue{
		{ID: 10, ProjectID: ptr(1)},
		{ID: 11, ProjectID: ptr(1), ParentIssueID: ptr(10)},
		{ID: 12, ProjectID: ptr(1), ParentIssueID: ptr(11), IsSubtask: true},
	}
	view := Materialize(issues)
	mismatches, err := Verify(view, issues)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("Verify() on fresh view = %v", mismatches)
	}

	stale := "/1/10>12."
	view[0].Path = &stale
	mismatches, err = Verify(view, issues)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if len(mismatches) != 1 || mismatches[0].SubtaskID != 12 {
		t.Fatalf("Verify() on stale view = %v", mismatches)
	}
}

func TestVerifyReportsMissingAndUnknownRows(t *testing.T) {
	issues := []models.Issue{
		{ID: 10, ProjectID: ptr(1)},
		{ID: 12, ProjectID: ptr(1), ParentIssueID: ptr(10), IsSubtask: true},
		{ID: 13, ProjectID: ptr(1), ParentIssueID: ptr(10), IsSubtask: true},
	}
	view := Materialize(issues)[:1]
	path := "/1/10>99."
	view = append(view, models.SubtaskWithPath{ID: 99, Path: &path})

	mismatches, err := Verify(view, issues)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	var got []string
	for _, m := range mismatches {
		got = append(got, fmt.Sprintf("%d: %s", m.SubtaskID, m.Reason))
	}
	want := []string{"99: not a subtask in the issue table", "13: missing from view"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Verify() mismatch (-want +got):\n%s", diff)
	}
}

func TestSubtaskBelowSubtaskIsNotPlaced(t *testing.T) {
	issues := []models.Issue{
		{ID: 1, ProjectID: ptr(1)},
		{ID: 2, ProjectID: ptr(1), ParentIssueID: ptr(1)},
		{ID: 3, ProjectID: ptr(1), ParentIssueID: ptr(2), IsSubtask: true},
		{ID: 4, ProjectID: ptr(1), ParentIssueID: ptr(3), IsSubtask: true},
	}
	nodes := NodesFromIssues(issues)

	triples, err := Triples(nodes)
	if err != nil {
		t.Fatalf("Triples() error: %v", err)
	}
	if diff := cmp.Diff([]Triple{{Ancestor1: 1, Ancestor2: 2, SubtaskID: 3}}, triples); diff != "" {
		t.Errorf("Triples() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int64]Path{3: "/1/1>2>3."}, DerivePaths(nodes)); diff != "" {
		t.Errorf("DerivePaths() mismatch (-want +got):\n%s", diff)
	}

	mismatches, err := Verify(Materialize(issues), issues)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if len(mismatches) != 0 {
		t.Errorf("Verify() = %v, want no drift", mismatches)
	}

	// a view that placed the child instead must be flagged for both subtasks
	view := Materialize(issues)
	wrong := "/1/1>2>4."
	for i := range view {
		switch view[i].ID {
		case 3:
			view[i].Path = nil
		case 4:
			view[i].Path = &wrong
		}
	}
	mismatches, err = Verify(view, issues)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if len(mismatches) != 2 {
		t.Errorf("Verify() on misplaced view = %v, want 2 mismatches", mismatches)
	}
}
