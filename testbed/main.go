package main

import (
	"fmt"
	"os"
)

func main() {
	game, err := Boot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "boot failed:", err)
		os.Exit(1)
	}
	fmt.Println(game)
}
