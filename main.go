package main

import "github.com/inovacc/juli/cmd"

func main() {
	cmd.Execute()
}
