// Package storetest holds the behavioural contract every types.Store backend
// must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// Factory returns a new, unattached backend.
type Factory func() types.Store

// Run executes the contract suite against backends produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s types.Store)
	}{
		{"Lifecycle", testLifecycle},
		{"UniqueIDs", testUniqueIDs},
		{"CreateDefaults", testCreateDefaults},
		{"ListOrder", testListOrder},
		{"GetUnknown", testGetUnknown},
		{"UpdateMerges", testUpdateMerges},
		{"UpdateUnknownMutatesNothing", testUpdateUnknown},
		{"DeleteOnce", testDeleteOnce},
		{"DeleteUserKeepsTodos", testDeleteUserKeepsTodos},
		{"DeleteTodoCascades", testDeleteTodoCascades},
		{"TodosByUser", testTodosByUser},
		{"ToggleInvolution", testToggleInvolution},
		{"AddTodoIdempotent", testAddTodoIdempotent},
		{"AddTodoUnknown", testAddTodoUnknown},
		{"RemoveTodo", testRemoveTodo},
		{"ProjectTodosOrder", testProjectTodosOrder},
		{"ReturnedCopies", testReturnedCopies},
		{"Load", testLoad},
		{"Counts", testCounts},
		{"Scenario", testScenario},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore()
			require.NoError(t, s.Attach(types.DefaultConfig()))
			t.Cleanup(func() { s.Detach() })
			tc.fn(t, s)
		})
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func testLifecycle(t *testing.T, s types.Store) {
	assert.ErrorIs(t, s.Attach(types.DefaultConfig()), types.ErrAlreadyAttached)

	_, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach(), "Detach is idempotent")

	_, err = s.ListUsers()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = s.CreateTodo(types.NewTodo{Title: "T"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, s.DeleteProject("1"), types.ErrStoreDetached)

	require.NoError(t, s.Attach(types.DefaultConfig()))
	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users, "data does not survive Detach")
}

func testUniqueIDs(t *testing.T, s types.Store) {
	const n = 25
	seen := make(map[string]bool, n)
	for range n {
		u, err := s.CreateUser(types.NewUser{Name: "Same", Email: "same@x.com"})
		require.NoError(t, err)
		require.NotEmpty(t, u.ID)
		assert.False(t, seen[u.ID], "duplicate id %s", u.ID)
		seen[u.ID] = true
	}
	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, n)
}

func testCreateDefaults(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Nil(t, u.Role)

	todo, err := s.CreateTodo(types.NewTodo{Title: "T1", UserID: u.ID})
	require.NoError(t, err)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.Description)

	done, err := s.CreateTodo(types.NewTodo{Title: "T2", UserID: u.ID, Completed: boolPtr(true), Description: strPtr("d")})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, "d", *done.Description)

	p, err := s.CreateProject(types.NewProject{Name: "P1"})
	require.NoError(t, err)
	assert.NotNil(t, p.TodoIDs)
	assert.Empty(t, p.TodoIDs)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func testListOrder(t *testing.T, s types.Store) {
	var want []string
	for _, name := range []string{"c", "a", "b"} {
		p, err := s.CreateProject(types.NewProject{Name: name})
		require.NoError(t, err)
		want = append(want, p.ID)
	}
	_, err := s.UpdateProject(want[0], types.ProjectPatch{Name: graphql.OmittableOf("z")})
	require.NoError(t, err)

	projects, err := s.ListProjects()
	require.NoError(t, err)
	var got []string
	for _, p := range projects {
		got = append(got, p.ID)
	}
	assert.Equal(t, want, got, "update keeps position")

	todos, err := s.ListTodos()
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func testGetUnknown(t *testing.T, s types.Store) {
	_, err := s.GetUser("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.GetTodo("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.GetProject("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.ToggleTodo("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testUpdateMerges(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com", Role: strPtr("admin")})
	require.NoError(t, err)

	u2, err := s.UpdateUser(u.ID, types.UserPatch{Email: graphql.OmittableOf("b@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "A", u2.Name)
	assert.Equal(t, "b@x.com", u2.Email)
	assert.Equal(t, strPtr("admin"), u2.Role)

	u3, err := s.UpdateUser(u.ID, types.UserPatch{Role: graphql.OmittableOf[*string](nil)})
	require.NoError(t, err)
	assert.Nil(t, u3.Role)

	got, err := s.GetUser(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u3, got)

	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: u.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	todo2, err := s.UpdateTodo(todo.ID, types.TodoPatch{Title: graphql.OmittableOf("T2")})
	require.NoError(t, err)
	assert.Equal(t, "T2", todo2.Title)
	assert.True(t, todo2.Completed, "omitted completed is preserved")

	p, err := s.CreateProject(types.NewProject{Name: "P", Description: strPtr("d")})
	require.NoError(t, err)
	_, err = s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)
	p2, err := s.UpdateProject(p.ID, types.ProjectPatch{Description: graphql.OmittableOf(strPtr("e"))})
	require.NoError(t, err)
	assert.Equal(t, "P", p2.Name)
	assert.Equal(t, strPtr("e"), p2.Description)
	assert.Equal(t, []string{todo.ID}, p2.TodoIDs)
}

func testUpdateUnknown(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", Description: strPtr("d"), UserID: u.ID})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)
	_, err = s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)

	snapshot := func() ([]types.User, []types.Todo, []types.Project) {
		users, err := s.ListUsers()
		require.NoError(t, err)
		todos, err := s.ListTodos()
		require.NoError(t, err)
		projects, err := s.ListProjects()
		require.NoError(t, err)
		return users, todos, projects
	}
	usersBefore, todosBefore, projectsBefore := snapshot()

	_, err = s.UpdateUser("missing", types.UserPatch{Name: graphql.OmittableOf("X")})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.UpdateTodo("missing", types.TodoPatch{
		Title:       graphql.OmittableOf("X"),
		Description: graphql.OmittableOf[*string](nil),
		Completed:   graphql.OmittableOf(boolPtr(true)),
		UserID:      graphql.OmittableOf(u.ID),
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.UpdateProject("missing", types.ProjectPatch{
		Name:        graphql.OmittableOf("X"),
		Description: graphql.OmittableOf(strPtr("x")),
	})
	assert.ErrorIs(t, err, types.ErrNotFound)

	usersAfter, todosAfter, projectsAfter := snapshot()
	assert.Equal(t, usersBefore, usersAfter)
	assert.Equal(t, todosBefore, todosAfter)
	assert.Equal(t, projectsBefore, projectsAfter)
	require.Len(t, todosAfter, 1)
	assert.Equal(t, "T", todosAfter[0].Title)
	require.Len(t, projectsAfter, 1)
	assert.Equal(t, "P", projectsAfter[0].Name)
	assert.Equal(t, []string{todo.ID}, projectsAfter[0].TodoIDs)
}

func testDeleteOnce(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = s.CreateUser(types.NewUser{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: u.ID})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(u.ID))
	assert.ErrorIs(t, s.DeleteUser(u.ID), types.ErrNotFound)
	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1, "exactly one user removed")

	require.NoError(t, s.DeleteTodo(todo.ID))
	assert.ErrorIs(t, s.DeleteTodo(todo.ID), types.ErrNotFound)

	require.NoError(t, s.DeleteProject(p.ID))
	assert.ErrorIs(t, s.DeleteProject(p.ID), types.ErrNotFound)
}

func testDeleteUserKeepsTodos(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: u.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(u.ID))

	got, err := s.GetTodo(todo.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
}

func testDeleteTodoCascades(t *testing.T, s types.Store) {
	t1, err := s.CreateTodo(types.NewTodo{Title: "T1", UserID: "1"})
	require.NoError(t, err)
	t2, err := s.CreateTodo(types.NewTodo{Title: "T2", UserID: "1"})
	require.NoError(t, err)

	var projects []types.Project
	for _, name := range []string{"P1", "P2", "P3"} {
		p, err := s.CreateProject(types.NewProject{Name: name})
		require.NoError(t, err)
		projects = append(projects, p)
	}
	for _, p := range projects[:2] {
		_, err := s.AddTodoToProject(p.ID, t1.ID)
		require.NoError(t, err)
		_, err = s.AddTodoToProject(p.ID, t2.ID)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteTodo(t1.ID))

	all, err := s.ListProjects()
	require.NoError(t, err)
	for _, p := range all {
		assert.NotContains(t, p.TodoIDs, t1.ID, "project %s", p.Name)
	}
	assert.Equal(t, []string{t2.ID}, all[0].TodoIDs)
	assert.Equal(t, []string{t2.ID}, all[1].TodoIDs)
	assert.Empty(t, all[2].TodoIDs)
}

func testTodosByUser(t *testing.T, s types.Store) {
	var want []string
	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		todo, err := s.CreateTodo(types.NewTodo{Title: string(rune('a' + i)), UserID: owner})
		require.NoError(t, err)
		if owner == "u1" {
			want = append(want, todo.ID)
		}
	}

	todos, err := s.TodosByUser("u1")
	require.NoError(t, err)
	var got []string
	for _, todo := range todos {
		got = append(got, todo.ID)
	}
	assert.Equal(t, want, got)

	none, err := s.TodosByUser("nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testToggleInvolution(t *testing.T, s types.Store) {
	for _, initial := range []bool{false, true} {
		todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: "1", Completed: boolPtr(initial)})
		require.NoError(t, err)

		once, err := s.ToggleTodo(todo.ID)
		require.NoError(t, err)
		assert.Equal(t, !initial, once.Completed)

		twice, err := s.ToggleTodo(todo.ID)
		require.NoError(t, err)
		assert.Equal(t, initial, twice.Completed)

		got, err := s.GetTodo(todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo, got)
	}
}

func testAddTodoIdempotent(t *testing.T, s types.Store) {
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: "1"})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)

	first, err := s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)
	second, err := s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{todo.ID}, first.TodoIDs)
	assert.Equal(t, []string{todo.ID}, second.TodoIDs)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{todo.ID}, got.TodoIDs)
}

func testAddTodoUnknown(t *testing.T, s types.Store) {
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: "1"})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)

	_, err = s.AddTodoToProject("missing", todo.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.AddTodoToProject(p.ID, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TodoIDs)
}

func testRemoveTodo(t *testing.T, s types.Store) {
	t1, err := s.CreateTodo(types.NewTodo{Title: "T1", UserID: "1"})
	require.NoError(t, err)
	t2, err := s.CreateTodo(types.NewTodo{Title: "T2", UserID: "1"})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)
	for _, id := range []string{t1.ID, t2.ID} {
		_, err := s.AddTodoToProject(p.ID, id)
		require.NoError(t, err)
	}

	got, err := s.RemoveTodoFromProject(p.ID, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{t2.ID}, got.TodoIDs)

	got, err = s.RemoveTodoFromProject(p.ID, t1.ID)
	require.NoError(t, err, "removing an absent todo is a no-op")
	assert.Equal(t, []string{t2.ID}, got.TodoIDs)

	_, err = s.RemoveTodoFromProject("missing", t2.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.GetTodo(t1.ID)
	assert.NoError(t, err, "unlinking keeps the todo")
}

func testProjectTodosOrder(t *testing.T, s types.Store) {
	var todos []types.Todo
	for _, title := range []string{"first", "second", "third"} {
		todo, err := s.CreateTodo(types.NewTodo{Title: title, UserID: "1"})
		require.NoError(t, err)
		todos = append(todos, todo)
	}
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)
	for _, i := range []int{2, 0, 1} {
		_, err := s.AddTodoToProject(p.ID, todos[i].ID)
		require.NoError(t, err)
	}

	got, err := s.ProjectTodos(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.Todo{todos[2], todos[0], todos[1]}, got, "todoIds order, not store order")

	// Re-adding after removal moves the todo to the end.
	_, err = s.RemoveTodoFromProject(p.ID, todos[2].ID)
	require.NoError(t, err)
	_, err = s.AddTodoToProject(p.ID, todos[2].ID)
	require.NoError(t, err)
	project, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{todos[0].ID, todos[1].ID, todos[2].ID}, project.TodoIDs)

	unknown, err := s.ProjectTodos("missing")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func testReturnedCopies(t *testing.T, s types.Store) {
	todo, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: "1", Description: strPtr("d")})
	require.NoError(t, err)
	p, err := s.CreateProject(types.NewProject{Name: "P"})
	require.NoError(t, err)
	p, err = s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)

	p.TodoIDs[0] = "tampered"
	*todo.Description = "tampered"

	gotP, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{todo.ID}, gotP.TodoIDs)

	gotT, err := s.GetTodo(todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "d", *gotT.Description)
}

func testLoad(t *testing.T, s types.Store) {
	_, err := s.CreateUser(types.NewUser{Name: "gone", Email: "g@x.com"})
	require.NoError(t, err)

	data := types.Dataset{
		Users: []types.User{{ID: "1", Name: "John", Email: "john@example.com", Role: strPtr("admin")}},
		Todos: []types.Todo{
			{ID: "1", Title: "a", UserID: "1"},
			{ID: "2", Title: "b", UserID: "1", Completed: true},
		},
		Projects: []types.Project{{ID: "1", Name: "P", TodoIDs: []string{"2", "1"}}},
	}
	require.NoError(t, s.Load(data))

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, data.Users, users, "Load replaces existing content")

	todos, err := s.ProjectTodos("1")
	require.NoError(t, err)
	assert.Equal(t, []types.Todo{data.Todos[1], data.Todos[0]}, todos)

	err = s.Load(types.Dataset{Users: []types.User{{ID: "1"}, {ID: "1"}}})
	assert.ErrorIs(t, err, types.ErrDuplicateID)
}

func testCounts(t *testing.T, s types.Store) {
	_, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	for range 2 {
		_, err := s.CreateTodo(types.NewTodo{Title: "T", UserID: "1"})
		require.NoError(t, err)
	}

	counts, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		types.EntityUser:    1,
		types.EntityTodo:    2,
		types.EntityProject: 0,
	}, counts)
}

func testScenario(t *testing.T, s types.Store) {
	u, err := s.CreateUser(types.NewUser{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Nil(t, u.Role)

	todo, err := s.CreateTodo(types.NewTodo{Title: "T1", UserID: u.ID})
	require.NoError(t, err)
	assert.False(t, todo.Completed)

	todo, err = s.ToggleTodo(todo.ID)
	require.NoError(t, err)
	assert.True(t, todo.Completed)

	p, err := s.CreateProject(types.NewProject{Name: "P1"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, p.TodoIDs)

	p, err = s.AddTodoToProject(p.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{todo.ID}, p.TodoIDs)

	require.NoError(t, s.DeleteTodo(todo.ID))

	todos, err := s.ProjectTodos(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.Todo{}, todos)
}
