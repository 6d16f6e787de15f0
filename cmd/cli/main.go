package main

import "maintdesk/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
