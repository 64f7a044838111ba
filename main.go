package main

import "github.com/pavelhrncir/casebook/cmd"

func main() {
	cmd.Execute()
}
