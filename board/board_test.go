package board

import (
	"reflect"
	"testing"

	"kanbanflow/domain"
)

func task(id string, status domain.Status) domain.Task {
	return domain.Task{
		ID:        id,
		BoardID:   domain.DefaultBoardID,
		Title:     "Task " + id,
		Priority:  domain.PriorityMedium,
		Labels:    []string{},
		Assignee:  domain.Unassigned,
		Status:    status,
		CreatedAt: "2026-08-01T10:00:00Z",
	}
}

func TestPartitionPlacesEveryTaskExactlyOnce(t *testing.T) {
	tasks := []domain.Task{
		task("a", domain.StatusTodo),
		task("b", domain.StatusInProgress),
		task("c", domain.StatusTodo),
		task("d", domain.StatusDone),
		task("e", domain.StatusReview),
	}

	cols := Partition(tasks)

	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}
	seen := make(map[string]int)
	total := 0
	for _, col := range cols {
		for _, tk := range col.Tasks {
			if tk.Status != col.ID {
				t.Fatalf("task %s with status %s placed in column %s", tk.ID, tk.Status, col.ID)
			}
			seen[tk.ID]++
			total++
		}
	}
	if total != len(tasks) {
		t.Fatalf("expected %d placed tasks, got %d", len(tasks), total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("task %s appears %d times", id, n)
		}
	}
}

func TestPartitionPreservesArrivalOrderWithinColumn(t *testing.T) {
	tasks := []domain.Task{
		task("first", domain.StatusTodo),
		task("mid", domain.StatusDone),
		task("second", domain.StatusTodo),
		task("third", domain.StatusTodo),
	}

	cols := Partition(tasks)

	todo := cols[0]
	if todo.ID != domain.StatusTodo {
		t.Fatalf("first column is %s", todo.ID)
	}
	gotOrder := []string{}
	for _, tk := range todo.Tasks {
		gotOrder = append(gotOrder, tk.ID)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(gotOrder, want) {
		t.Fatalf("order changed: got %v want %v", gotOrder, want)
	}
}

func TestPartitionDropsUnknownStatus(t *testing.T) {
	tasks := []domain.Task{
		task("ok", domain.StatusTodo),
		task("bad", domain.Status("archived")),
	}

	cols := Partition(tasks)

	if got := len(cols.Tasks()); got != 1 {
		t.Fatalf("expected 1 placed task, got %d", got)
	}
}

func TestColumnTitlesAreFrench(t *testing.T) {
	cols := NewColumns()
	want := []string{"À faire", "En cours", "En revue", "Terminé"}
	for i, col := range cols {
		if col.Title != want[i] {
			t.Fatalf("column %d title %q, want %q", i, col.Title, want[i])
		}
	}
}

func TestMoveRewritesStatusAndPreservesEverythingElse(t *testing.T) {
	orig := task("a", domain.StatusTodo)
	orig.Labels = []string{"one", "two"}
	orig.DueDate = "01/09/2026"
	cols := Partition([]domain.Task{orig, task("b", domain.StatusTodo)})

	moved := Move(cols, "a", domain.StatusTodo, domain.StatusDone)

	got, lane, ok := moved.Find("a")
	if !ok || lane != domain.StatusDone {
		t.Fatalf("task not in done lane after move (ok=%v lane=%s)", ok, lane)
	}
	if got.Status != domain.StatusDone {
		t.Fatalf("status not rewritten: %s", got.Status)
	}
	want := orig
	want.Status = domain.StatusDone
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("move altered other fields:\ngot  %#v\nwant %#v", got, want)
	}
	if _, lane, _ := moved.Find("b"); lane != domain.StatusTodo {
		t.Fatalf("unrelated task moved to %s", lane)
	}
}

func TestMoveThereAndBackRestoresBoard(t *testing.T) {
	cols := Partition([]domain.Task{
		task("a", domain.StatusTodo),
		task("b", domain.StatusInProgress),
	})

	there := Move(cols, "a", domain.StatusTodo, domain.StatusReview)
	back := Move(there, "a", domain.StatusReview, domain.StatusTodo)

	if !reflect.DeepEqual(back, cols) {
		t.Fatalf("board not restored:\ngot  %#v\nwant %#v", back, cols)
	}
}

func TestMoveAbsentTaskIsNoOp(t *testing.T) {
	cols := Partition([]domain.Task{task("a", domain.StatusTodo)})

	got := Move(cols, "missing", domain.StatusTodo, domain.StatusDone)

	if !reflect.DeepEqual(got, cols) {
		t.Fatalf("board changed for an absent task")
	}
}

func TestMoveWrongSourceLaneIsNoOp(t *testing.T) {
	cols := Partition([]domain.Task{task("a", domain.StatusTodo)})

	got := Move(cols, "a", domain.StatusDone, domain.StatusReview)

	if !reflect.DeepEqual(got, cols) {
		t.Fatalf("board changed when source lane did not hold the task")
	}
}

func TestRemoveAndInsert(t *testing.T) {
	cols := Partition([]domain.Task{
		task("a", domain.StatusTodo),
		task("b", domain.StatusDone),
	})

	removed := Remove(cols, "a")
	if _, _, ok := removed.Find("a"); ok {
		t.Fatalf("task still on board after Remove")
	}
	if _, _, ok := removed.Find("b"); !ok {
		t.Fatalf("unrelated task removed")
	}

	reinserted := Insert(removed, task("a", domain.StatusReview))
	if _, lane, ok := reinserted.Find("a"); !ok || lane != domain.StatusReview {
		t.Fatalf("task not inserted into review lane")
	}

	if got := Remove(cols, "missing"); !reflect.DeepEqual(got, cols) {
		t.Fatalf("Remove of unknown id changed the board")
	}
}

func TestDemoTasksOnePerColumn(t *testing.T) {
	cols := Partition(DemoTasks())

	for _, col := range cols {
		if len(col.Tasks) != 1 {
			t.Fatalf("column %s holds %d demo tasks, want 1", col.ID, len(col.Tasks))
		}
	}
	if got, _, _ := cols.Find("task-1"); got.Assignee != "Alex Martin" {
		t.Fatalf("unexpected demo assignee: %s", got.Assignee)
	}
}
