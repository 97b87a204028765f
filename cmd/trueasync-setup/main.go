package main

import "github.com/trueasync/trueasync-setup/cmd/trueasync-setup/cmd"

func main() {
	cmd.Execute()
}
