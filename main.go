package main

import "github.com/dh1tw/opusbridge/cmd"

func main() {
	cmd.Execute()
}
