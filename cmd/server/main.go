package main

import "emsspace/internal/app/server"

func main() {
	server.Run()
}
