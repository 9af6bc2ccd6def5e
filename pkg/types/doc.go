// Package types defines the Store interface, the User, Todo and Project
// entities with their creation and patch inputs, configuration, and the
// standard errors shared by every backend.
package types
