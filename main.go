package main

import "remindly-backend/cmd"

func main() {
	cmd.Run()
}
