package main

import "github.com/aleph-zero/abacus/cmd"

func main() {
	cmd.Execute()
}
