package main

import "github.com/mabhi256/memlab/cmd"

func main() {
	cmd.Execute()
}
