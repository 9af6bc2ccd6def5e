//go:build mage

// Package main provides build targets for the todograph project using Mage.
//
// Usage:
//
//	mage build          Compile the todograph binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install todograph to GOPATH/bin
//	mage stats          Print Go LOC counts
package main

const (
	binGo      = "go"
	binGit     = "git"
	binaryName = "todograph"
	binaryDir  = "bin"
	cmdDir     = "./cmd/todograph"
	modulePath = "github.com/mesh-intelligence/todograph"

	coverProfile = "coverage.out"
)
