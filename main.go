package main

import "github.com/bloodmagesoftware/bsplevel/cmd"

func main() {
	cmd.Execute()
}
