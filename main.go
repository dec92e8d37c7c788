package main

import (
	"fmt"
	"os"

	"github.com/AilenFranco43/Booked/startup"
)

func main() {
	if err := startup.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
