// storykeeper: character knowledge tracking MCP server
//
// Tracks what each character of a fiction series knows, suspects, or is
// unaware of at every chapter, and validates drafted scenes against it.
// Integrates with any MCP-capable AI writing tool over stdio and can also
// expose a REST API.
//
// Usage:
//
//	storykeeper serve                  # MCP server (stdio transport)
//	storykeeper serve --http :8080     # MCP plus REST API
//	storykeeper check scene --character 1 --chapter 5 < scene.txt
//	storykeeper version --check        # Look for a newer release
package main

import "github.com/HendryAvila/storykeeper/internal/cli"

func main() {
	cli.Execute()
}
