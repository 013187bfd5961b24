package main

import (
	"log"

	"github.com/nguyengg/zipblob/internal/cmd"
)

func main() {
	log.SetFlags(0)

	_, err := cmd.NewParser().Parse()
	exit(err)
}
