package main

import "github.com/AssQ222/PDRPG/cmd/pdrpg/root"

func main() {
	root.Execute()
}
