package main

import "chaptercut/cmd"

func main() {
	cmd.Execute()
}
