package sqlite

// Schema DDL. seq gives insertion order; position gives project todo order.
const (
	createUsers = `CREATE TABLE users (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    role TEXT
);`

	createTodos = `CREATE TABLE todos (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    user_id TEXT NOT NULL
);`

	createProjects = `CREATE TABLE projects (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT
);`

	createProjectTodos = `CREATE TABLE project_todos (
    project_id TEXT NOT NULL,
    todo_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (project_id, todo_id),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
    FOREIGN KEY (todo_id) REFERENCES todos(id) ON DELETE CASCADE
);`
)

// Index DDL.
const (
	indexTodosUser        = `CREATE INDEX idx_todos_user ON todos(user_id);`
	indexProjectTodosTodo = `CREATE INDEX idx_project_todos_todo ON project_todos(todo_id);`
)

// schemaDDL lists the CREATE TABLE statements in execution order.
var schemaDDL = []string{
	createUsers,
	createTodos,
	createProjects,
	createProjectTodos,
}

// indexDDL lists the CREATE INDEX statements.
var indexDDL = []string{
	indexTodosUser,
	indexProjectTodosTodo,
}
