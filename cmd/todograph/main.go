// Command todograph serves an in-memory GraphQL store of users, todos and
// projects.
package main

import "github.com/mesh-intelligence/todograph/internal/cli"

func main() {
	cli.Execute()
}
