package types

import "fmt"

// Dataset is a full snapshot of store content, used for seeding.
type Dataset struct {
	Users    []User    `json:"users" yaml:"users"`
	Todos    []Todo    `json:"todos" yaml:"todos"`
	Projects []Project `json:"projects" yaml:"projects"`
}

// Check returns ErrDuplicateID if an id repeats within a collection or a
// project lists the same todo twice, and ErrNotFound if a project lists a
// todo the dataset does not contain. A running store skips such dangling
// ids; a loaded dataset may not contain them.
func (d Dataset) Check() error {
	if err := uniqueIDs(EntityUser, len(d.Users), func(i int) string { return d.Users[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs(EntityTodo, len(d.Todos), func(i int) string { return d.Todos[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs(EntityProject, len(d.Projects), func(i int) string { return d.Projects[i].ID }); err != nil {
		return err
	}
	todos := make(map[string]bool, len(d.Todos))
	for _, t := range d.Todos {
		todos[t.ID] = true
	}
	for _, p := range d.Projects {
		if err := uniqueIDs("project "+p.ID+" todo", len(p.TodoIDs), func(i int) string { return p.TodoIDs[i] }); err != nil {
			return err
		}
		for _, id := range p.TodoIDs {
			if !todos[id] {
				return fmt.Errorf("project %q todo %q: %w", p.ID, id, ErrNotFound)
			}
		}
	}
	return nil
}

func uniqueIDs(kind string, n int, id func(int) string) error {
	seen := make(map[string]bool, n)
	for i := range n {
		v := id(i)
		if seen[v] {
			return fmt.Errorf("%s %q: %w", kind, v, ErrDuplicateID)
		}
		seen[v] = true
	}
	return nil
}
