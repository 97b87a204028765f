package main

import "github.com/trueasync/trueasync-setup/cmd/trueasync-checksums/cmd"

func main() {
	cmd.Execute()
}
