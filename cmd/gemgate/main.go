package main

import (
	"gemgate/cmd/handlers"
	"gemgate/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
