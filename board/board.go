// Package board holds the client-side view model of a kanban board: tasks
// grouped into status columns, plus the pure operations the UI performs on
// them. Nothing in here talks to the network.
package board

import (
	"time"

	"kanbanflow/domain"
)

// Column is one lane of the board. Its ID doubles as the status of every
// task it holds.
type Column struct {
	ID    domain.Status `json:"id"`
	Title string        `json:"title"`
	Tasks []domain.Task `json:"tasks"`
}

// Columns is a full board in fixed lane order.
type Columns []Column

var columnTitles = map[domain.Status]string{
	domain.StatusTodo:       "À faire",
	domain.StatusInProgress: "En cours",
	domain.StatusReview:     "En revue",
	domain.StatusDone:       "Terminé",
}

// NewColumns returns an empty board with the four lanes in canonical
// order.
func NewColumns() Columns {
	cols := make(Columns, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		cols = append(cols, Column{ID: s, Title: columnTitles[s]})
	}
	return cols
}

// Partition distributes tasks into columns by status, preserving arrival
// order within each lane. Tasks with an unknown status are dropped.
func Partition(tasks []domain.Task) Columns {
	cols := NewColumns()
	index := make(map[domain.Status]int, len(cols))
	for i, col := range cols {
		index[col.ID] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	return cols
}

// Tasks flattens the board back into a single slice, lane by lane.
func (cols Columns) Tasks() []domain.Task {
	var out []domain.Task
	for _, col := range cols {
		out = append(out, col.Tasks...)
	}
	return out
}

// Find returns the task with the given id and the lane it sits in.
func (cols Columns) Find(taskID string) (domain.Task, domain.Status, bool) {
	for _, col := range cols {
		for _, t := range col.Tasks {
			if t.ID == taskID {
				return t, col.ID, true
			}
		}
	}
	return domain.Task{}, "", false
}

// Move returns a new board with the task moved from one lane to another,
// its status rewritten to the destination lane. If the task is not in the
// source lane the board is returned unchanged.
func Move(cols Columns, taskID string, from, to domain.Status) Columns {
	var moved *domain.Task
	out := make(Columns, len(cols))
	for i, col := range cols {
		out[i] = Column{ID: col.ID, Title: col.Title, Tasks: col.Tasks}
		if col.ID != from {
			continue
		}
		for j, t := range col.Tasks {
			if t.ID == taskID {
				task := t
				moved = &task
				tasks := make([]domain.Task, 0, len(col.Tasks)-1)
				tasks = append(tasks, col.Tasks[:j]...)
				tasks = append(tasks, col.Tasks[j+1:]...)
				out[i].Tasks = tasks
				break
			}
		}
	}
	if moved == nil {
		return cols
	}
	moved.Status = to
	for i := range out {
		if out[i].ID == to {
			tasks := make([]domain.Task, 0, len(out[i].Tasks)+1)
			tasks = append(tasks, out[i].Tasks...)
			tasks = append(tasks, *moved)
			out[i].Tasks = tasks
		}
	}
	return out
}

// Remove returns a new board without the task, wherever it sits. Unknown
// ids leave the board unchanged.
func Remove(cols Columns, taskID string) Columns {
	out := make(Columns, len(cols))
	for i, col := range cols {
		out[i] = Column{ID: col.ID, Title: col.Title, Tasks: col.Tasks}
		for j, t := range col.Tasks {
			if t.ID == taskID {
				tasks := make([]domain.Task, 0, len(col.Tasks)-1)
				tasks = append(tasks, col.Tasks[:j]...)
				tasks = append(tasks, col.Tasks[j+1:]...)
				out[i].Tasks = tasks
				break
			}
		}
	}
	return out
}

// Insert returns a new board with the task appended to the lane matching
// its status. Tasks with an unknown status are dropped.
func Insert(cols Columns, t domain.Task) Columns {
	out := make(Columns, len(cols))
	for i, col := range cols {
		out[i] = Column{ID: col.ID, Title: col.Title, Tasks: col.Tasks}
		if col.ID == t.Status {
			tasks := make([]domain.Task, 0, len(col.Tasks)+1)
			tasks = append(tasks, col.Tasks...)
			tasks = append(tasks, t)
			out[i].Tasks = tasks
		}
	}
	return out
}

const demoDateLayout = "02/01/2006"

// DemoTasks is the offline dataset shown when the API cannot be reached,
// one task per lane.
func DemoTasks() []domain.Task {
	now := time.Now()
	day := 24 * time.Hour
	return []domain.Task{
		{
			ID:          "task-1",
			BoardID:     domain.DefaultBoardID,
			Title:       "Déployer sur Docker",
			Description: "Configurer les containers et docker-compose pour le déploiement",
			Priority:    domain.PriorityHigh,
			Labels:      []string{"docker", "devops", "déploiement"},
			Status:      domain.StatusTodo,
			Assignee:    "Alex Martin",
			DueDate:     now.Add(day).Format(demoDateLayout),
			CreatedAt:   now.Format(demoDateLayout),
		},
		{
			ID:          "task-2",
			BoardID:     domain.DefaultBoardID,
			Title:       "Développer interface utilisateur",
			Description: "Créer les composants React avec TypeScript et tests unitaires",
			Priority:    domain.PriorityMedium,
			Labels:      []string{"frontend", "react", "typescript"},
			Status:      domain.StatusInProgress,
			Assignee:    "Maya Dubois",
			DueDate:     now.Add(3 * day).Format(demoDateLayout),
			CreatedAt:   now.Add(-day).Format(demoDateLayout),
		},
		{
			ID:          "task-3",
			BoardID:     domain.DefaultBoardID,
			Title:       "Configurer base de données",
			Description: "Mettre en place MongoDB avec les schémas et index",
			Priority:    domain.PriorityMedium,
			Labels:      []string{"database", "mongodb"},
			Status:      domain.StatusReview,
			Assignee:    "Thomas Leroy",
			DueDate:     now.Add(2 * day).Format(demoDateLayout),
			CreatedAt:   now.Add(-2 * day).Format(demoDateLayout),
		},
		{
			ID:          "task-4",
			BoardID:     domain.DefaultBoardID,
			Title:       "Tests d'intégration",
			Description: "Valider le fonctionnement complet avec tests automatisés",
			Priority:    domain.PriorityLow,
			Labels:      []string{"testing", "qa", "automation"},
			Status:      domain.StatusDone,
			Assignee:    "Équipe QA",
			DueDate:     now.Add(-day).Format(demoDateLayout),
			CreatedAt:   now.Add(-3 * day).Format(demoDateLayout),
		},
	}
}
