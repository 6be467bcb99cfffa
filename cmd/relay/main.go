package main

import "voice-relay/cmd/relay/cmd"

func main() {
	cmd.Execute()
}
