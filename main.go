package main

import (
	"memory-map-backend/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
