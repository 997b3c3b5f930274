package main

import "github.com/sarchlab/periphsim/periphsim/cmd"

func main() {
	cmd.Execute()
}
