package main

import (
	"github.com/joho/godotenv"

	"urlguard/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
