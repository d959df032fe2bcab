package store

import (
	"github.com/strefethen/crud-example/internal/domain"
)

// Document is the root structure persisted by every backend.
type Document struct {
	Items []domain.Item `json:"items"`
	Tasks []domain.Task `json:"tasks"`
}

// normalize replaces nil collections so they are written as empty arrays.
func (d *Document) normalize() {
	if d.Items == nil {
		d.Items = []domain.Item{}
	}
	if d.Tasks == nil {
		d.Tasks = []domain.Task{}
	}
}

// Clone returns a copy whose collections can be modified without touching d.
func (d *Document) Clone() Document {
	out := Document{
		Items: make([]domain.Item, len(d.Items)),
		Tasks: make([]domain.Task, len(d.Tasks)),
	}
	copy(out.Items, d.Items)
	copy(out.Tasks, d.Tasks)
	return out
}

// Item returns a pointer into the item collection.
func (d *Document) Item(id string) (*domain.Item, error) {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i], nil
		}
	}
	return nil, domain.NewItemNotFoundError(id)
}

// AddItem appends an item.
func (d *Document) AddItem(item domain.Item) {
	d.Items = append(d.Items, item)
}

// DeleteItem removes an item, keeping the order of the remaining ones.
// Tasks referencing the item are left in place.
func (d *Document) DeleteItem(id string) error {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return domain.NewItemNotFoundError(id)
}

// HasItemID reports whether an item with the id exists.
func (d *Document) HasItemID(id string) bool {
	_, err := d.Item(id)
	return err == nil
}

// Task returns a pointer into the task collection.
func (d *Document) Task(id string) (*domain.Task, error) {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i], nil
		}
	}
	return nil, domain.NewTaskNotFoundError(id)
}

// AddTask appends a task.
func (d *Document) AddTask(task domain.Task) {
	d.Tasks = append(d.Tasks, task)
}

// HasTaskID reports whether a task with the id exists.
func (d *Document) HasTaskID(id string) bool {
	_, err := d.Task(id)
	return err == nil
}

// PendingTasks returns copies of all tasks that have not completed yet.
func (d *Document) PendingTasks() []domain.Task {
	var pending []domain.Task
	for _, t := range d.Tasks {
		if t.Status == domain.TaskStatusPending {
			pending = append(pending, t)
		}
	}
	return pending
}
