package main

import "pycheck/cmd"

func main() {
	cmd.Execute()
}
