package main

import "github.com/KaramelBytes/tabclean/cmd"

func main() {
	cmd.Execute()
}
