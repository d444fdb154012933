package main

import "github.com/pgerbes1/kfs/cmd/kfs/cmd"

func main() {
	cmd.Execute()
}
