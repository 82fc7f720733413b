package main

import "github.com/mabhi256/mjvm/cmd"

func main() {
	cmd.Execute()
}
