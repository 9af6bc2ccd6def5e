package types

import "errors"

// Store is the backend-agnostic holder of users, todos and projects.
// Callers attach to a backend, run operations, and detach when done.
// Every entity returned by a Store is a copy.
type Store interface {
	// Attach prepares the backend described by config. Returns
	// ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources and discards all data. Idempotent.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// Load replaces the store content with records whose ids are supplied.
	// Returns ErrDuplicateID if an id repeats within a collection.
	Load(data Dataset) error

	// Counts returns the number of records per entity name.
	Counts() (map[string]int, error)

	ListUsers() ([]User, error)
	GetUser(id string) (User, error)
	CreateUser(in NewUser) (User, error)
	UpdateUser(id string, patch UserPatch) (User, error)
	DeleteUser(id string) error

	ListTodos() ([]Todo, error)
	GetTodo(id string) (Todo, error)
	CreateTodo(in NewTodo) (Todo, error)
	UpdateTodo(id string, patch TodoPatch) (Todo, error)
	// DeleteTodo removes the todo and its id from every project.
	DeleteTodo(id string) error
	// TodosByUser returns the todos owned by userID in store order.
	TodosByUser(userID string) ([]Todo, error)
	// ToggleTodo flips Completed and returns the updated todo.
	ToggleTodo(id string) (Todo, error)

	ListProjects() ([]Project, error)
	GetProject(id string) (Project, error)
	CreateProject(in NewProject) (Project, error)
	UpdateProject(id string, patch ProjectPatch) (Project, error)
	DeleteProject(id string) error
	// ProjectTodos resolves the project's TodoIDs in order, skipping ids with
	// no todo. An unknown project yields an empty slice and no error.
	ProjectTodos(projectID string) ([]Todo, error)
	// AddTodoToProject links the todo to the project if not already linked.
	// Returns ErrNotFound if either id is absent.
	AddTodoToProject(projectID, todoID string) (Project, error)
	// RemoveTodoFromProject unlinks the todo if linked. Returns ErrNotFound
	// if the project is absent.
	RemoveTodoFromProject(projectID, todoID string) (Project, error)
}

// Store errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("duplicate id")
)

// Entity names used for counts, metrics and change events.
const (
	EntityUser    = "user"
	EntityTodo    = "todo"
	EntityProject = "project"
)
