package main

import "github.com/talentnet/backend/internal/cli/cmd"

func main() {
	cmd.Execute()
}
