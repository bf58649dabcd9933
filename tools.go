//go:build tools
// +build tools

// Package tools pins the code generators invoked through go generate (mockgen)
// so that go.mod tracks them.
package artist_hub

import (
	_ "go.uber.org/mock/mockgen"
)
