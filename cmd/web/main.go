package main

import "ged_backend/internal/app"

func main() {
	app.Run()
}
