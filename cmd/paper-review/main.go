package main

import cmd "github.com/rohmanhakim/paper-review/internal/cli"

func main() {
	cmd.Execute()
}
