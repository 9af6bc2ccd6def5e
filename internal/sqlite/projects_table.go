package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

const selectProject = "SELECT id, name, description FROM projects"

func insertProject(q querier, p types.Project) error {
	_, err := q.Exec("INSERT INTO projects (id, name, description) VALUES (?, ?, ?)",
		p.ID, p.Name, toNull(p.Description))
	if err != nil {
		return fmt.Errorf("inserting project %s: %w", p.ID, err)
	}
	return nil
}

// hydrateTodoIDs fills TodoIDs in position order.
func hydrateTodoIDs(q querier, p *types.Project) error {
	rows, err := q.Query("SELECT todo_id FROM project_todos WHERE project_id = ? ORDER BY position", p.ID)
	if err != nil {
		return fmt.Errorf("loading todo ids for project %s: %w", p.ID, err)
	}
	defer rows.Close()

	p.TodoIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning todo id: %w", err)
		}
		p.TodoIDs = append(p.TodoIDs, id)
	}
	return rows.Err()
}

func getProject(q querier, id string) (types.Project, error) {
	var (
		p    types.Project
		desc sql.NullString
	)
	err := q.QueryRow(selectProject+" WHERE id = ?", id).Scan(&p.ID, &p.Name, &desc)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Project{}, fmt.Errorf("project %q: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Project{}, fmt.Errorf("getting project %s: %w", id, err)
	}
	p.Description = nullString(desc)
	if err := hydrateTodoIDs(q, &p); err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// linkTodo appends todoID at the end of the project's todo order.
func linkTodo(q querier, projectID, todoID string) error {
	_, err := q.Exec(`INSERT INTO project_todos (project_id, todo_id, position)
        SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM project_todos WHERE project_id = ?`,
		projectID, todoID, projectID)
	if err != nil {
		return fmt.Errorf("linking todo %s to project %s: %w", todoID, projectID, err)
	}
	return nil
}

// ListProjects returns every project in creation order.
func (b *Backend) ListProjects() ([]types.Project, error) {
	projects := []types.Project{}
	err := b.read(func(q querier) error {
		rows, err := q.Query(selectProject + " ORDER BY seq")
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		for rows.Next() {
			var (
				p    types.Project
				desc sql.NullString
			)
			if err := rows.Scan(&p.ID, &p.Name, &desc); err != nil {
				rows.Close()
				return fmt.Errorf("scanning project: %w", err)
			}
			p.Description = nullString(desc)
			projects = append(projects, p)
		}
		// Close before hydrating: the database has a single connection.
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range projects {
			if err := hydrateTodoIDs(q, &projects[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns the project with id or ErrNotFound.
func (b *Backend) GetProject(id string) (types.Project, error) {
	var p types.Project
	err := b.read(func(q querier) error {
		var err error
		p, err = getProject(q, id)
		return err
	})
	return p, err
}

// CreateProject stores a new project with no todos.
func (b *Backend) CreateProject(in types.NewProject) (types.Project, error) {
	p := in.Build(generateUUID())
	if err := b.inTx(func(tx *sql.Tx) error { return insertProject(tx, p) }); err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// UpdateProject merges patch into the project with id.
func (b *Backend) UpdateProject(id string, patch types.ProjectPatch) (types.Project, error) {
	var p types.Project
	err := b.inTx(func(tx *sql.Tx) error {
		var err error
		if p, err = getProject(tx, id); err != nil {
			return err
		}
		patch.Apply(&p)
		if _, err := tx.Exec("UPDATE projects SET name = ?, description = ? WHERE id = ?",
			p.Name, toNull(p.Description), id); err != nil {
			return fmt.Errorf("updating project %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// DeleteProject removes the project and its links. Todos are left in place.
func (b *Backend) DeleteProject(id string) error {
	return b.inTx(func(tx *sql.Tx) error {
		return deleteByID(tx, "projects", "project", id)
	})
}

// ProjectTodos resolves the project's todos in position order. An unknown
// project yields an empty slice.
func (b *Backend) ProjectTodos(projectID string) ([]types.Todo, error) {
	var todos []types.Todo
	err := b.read(func(q querier) error {
		var err error
		todos, err = queryTodos(q, `SELECT t.id, t.title, t.description, t.completed, t.user_id
            FROM project_todos pt JOIN todos t ON t.id = pt.todo_id
            WHERE pt.project_id = ? ORDER BY pt.position`, projectID)
		return err
	})
	return todos, err
}

// AddTodoToProject links todoID to the project unless already linked.
func (b *Backend) AddTodoToProject(projectID, todoID string) (types.Project, error) {
	var p types.Project
	err := b.inTx(func(tx *sql.Tx) error {
		var err error
		if p, err = getProject(tx, projectID); err != nil {
			return err
		}
		if _, err := getTodo(tx, todoID); err != nil {
			return err
		}
		if p.HasTodo(todoID) {
			return nil
		}
		if err := linkTodo(tx, projectID, todoID); err != nil {
			return err
		}
		p.TodoIDs = append(p.TodoIDs, todoID)
		return nil
	})
	if err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// RemoveTodoFromProject unlinks todoID from the project if linked.
func (b *Backend) RemoveTodoFromProject(projectID, todoID string) (types.Project, error) {
	var p types.Project
	err := b.inTx(func(tx *sql.Tx) error {
		if _, err := getProject(tx, projectID); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM project_todos WHERE project_id = ? AND todo_id = ?",
			projectID, todoID); err != nil {
			return fmt.Errorf("unlinking todo %s from project %s: %w", todoID, projectID, err)
		}
		var err error
		p, err = getProject(tx, projectID)
		return err
	})
	if err != nil {
		return types.Project{}, err
	}
	return p, nil
}
