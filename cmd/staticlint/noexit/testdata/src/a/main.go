package main

import "os"

func main() {
	defer cleanup()
	os.Exit(1) // want "avoid direct os.Exit call in main.main"
}

func cleanup() {}

// Calls outside main.main are not reported.
func helper() {
	os.Exit(2)
}
