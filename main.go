package main

import "github.com/thereayou/roomcode/cmd/server"

func main() {
	s := server.NewServer()
	s.Run()
}
